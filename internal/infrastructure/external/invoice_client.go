package external

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tu-usuario/facturacion-api/internal/application/delivery"
)

// Verificar en tiempo de compilación que InvoiceClient implementa Sender.
var _ delivery.Sender = (*InvoiceClient)(nil)

// Config parámetros del cliente HTTP de envío de facturas.
type Config struct {
	URL        string        // endpoint externo
	Timeout    time.Duration // timeout por llamada
	MaxRetries int           // intentos totales de transporte por Send
	RetryWait  time.Duration // espera entre reintentos de transporte
}

// InvoiceClient envía el snapshot de una factura al sistema externo por HTTP.
// Usa net/http de la librería estándar; reintenta solo fallos puros de red
// (conexión rechazada, timeout). Una respuesta HTTP, incluso 5xx, se devuelve
// tal cual: decidir si esa respuesta amerita reintento es política del
// dispatcher, no del transporte.
type InvoiceClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewInvoiceClient construye el cliente.
func NewInvoiceClient(cfg Config) *InvoiceClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	return &InvoiceClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Send hace POST del payload JSON al endpoint configurado y devuelve el status
// HTTP. Error no nulo significa que ninguna respuesta llegó.
func (c *InvoiceClient) Send(ctx context.Context, body []byte) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(c.cfg.RetryWait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
		if err != nil {
			return 0, fmt.Errorf("crear request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		// El cuerpo no se usa; drenarlo permite reusar la conexión.
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return resp.StatusCode, nil
	}
	return 0, fmt.Errorf("enviar factura tras %d intentos: %w", c.cfg.MaxRetries, lastErr)
}
