package billing

import (
	"context"
	"time"

	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los
// repositorios de facturación. El consecutivo, la cabecera, los detalles y el
// encolado del envío comparten la misma transacción: cualquier falla hace
// rollback de todo, incluido el incremento del consecutivo.
type TxRunner interface {
	RunInvoicing(ctx context.Context, fn func(
		seqRepo repository.SequenceRepository,
		invoiceRepo repository.InvoiceRepository,
		deliveryRepo repository.DeliveryRepository,
	) error) error
}

// EnvioPolicy política de encolado de envíos al sistema externo.
// Con Enabled=false (tests por defecto) no se encola nada.
type EnvioPolicy struct {
	Enabled     bool
	Delay       time.Duration // espera antes del primer intento tras el commit
	MaxAttempts int           // intentos totales antes del fallo permanente
}
