package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// DeliveryRepository define el puerto de persistencia para la cola de envíos
// (outbox transaccional).
type DeliveryRepository interface {
	// Enqueue inserta el envío en estado PENDING. Se invoca dentro de la
	// transacción que crea la factura: si esa transacción hace rollback, el
	// envío tampoco existe.
	Enqueue(ctx context.Context, delivery *entity.Delivery) error
	// ClaimDue reclama hasta limit envíos PENDING cuyo scheduled_at ya venció y
	// los pasa a ATTEMPTING. Usa FOR UPDATE SKIP LOCKED: varios workers pueden
	// sondear a la vez sin reclamar el mismo envío (a lo sumo un intento en
	// vuelo por envío). También reclama envíos ATTEMPTING sin actividad desde
	// hace más de lease: si un worker muere entre el reclamo y el Update, el
	// envío vuelve a la cola en vez de quedar huérfano.
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*entity.Delivery, error)
	// Update persiste el resultado de un intento (estado, attempts, last_error,
	// scheduled_at, delivered_at).
	Update(ctx context.Context, delivery *entity.Delivery) error
}
