package delivery

import "context"

// Sender envía el cuerpo JSON al endpoint externo y devuelve el código HTTP de
// respuesta. Un error indica falla de transporte (tras los reintentos rápidos
// internos del cliente); un código fuera de 2xx es una respuesta del servidor.
// Ambos cuentan como intento fallido para el dispatcher.
type Sender interface {
	Send(ctx context.Context, body []byte) (status int, err error)
}
