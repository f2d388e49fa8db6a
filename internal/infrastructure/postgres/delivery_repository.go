package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

// DeliveryRepo implementación de DeliveryRepository sobre la tabla
// envios_factura (outbox transaccional).
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

const deliveryColumns = `id, factura_id, estado, intentos, max_intentos, ultimo_error, programado_en, entregado_en, created_at, updated_at`

// Enqueue inserta el envío en estado PENDING. Se invoca con el Querier de la
// transacción que crea la factura.
func (r *DeliveryRepo) Enqueue(ctx context.Context, delivery *entity.Delivery) error {
	query := `
		INSERT INTO envios_factura (id, factura_id, estado, intentos, max_intentos, ultimo_error, programado_en, entregado_en, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		delivery.ID, delivery.InvoiceID, delivery.Status, delivery.Attempts, delivery.MaxAttempts,
		delivery.LastError, delivery.ScheduledAt, delivery.DeliveredAt, delivery.CreatedAt, delivery.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert envío: %w", err)
	}
	return nil
}

// ClaimDue reclama hasta limit envíos PENDING vencidos y los pasa a ATTEMPTING.
// FOR UPDATE SKIP LOCKED deja que varios workers sondeen a la vez sin pisarse:
// las filas ya reclamadas por otro se saltan en lugar de bloquear. Las filas
// ATTEMPTING cuyo updated_at superó el lease se reclaman también: pertenecían
// a un worker que murió sin persistir el resultado.
func (r *DeliveryRepo) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*entity.Delivery, error) {
	query := `
		UPDATE envios_factura
		SET estado = $3, updated_at = $1
		WHERE id IN (
			SELECT id FROM envios_factura
			WHERE (estado = $4 AND programado_en <= $1)
			   OR (estado = $3 AND updated_at <= $5)
			ORDER BY programado_en
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + deliveryColumns
	rows, err := r.q.Query(ctx, query, now, limit, entity.DeliveryStatusAttempting, entity.DeliveryStatusPending, now.Add(-lease))
	if err != nil {
		return nil, fmt.Errorf("claim envíos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Delivery
	for rows.Next() {
		var d entity.Delivery
		if err := rows.Scan(&d.ID, &d.InvoiceID, &d.Status, &d.Attempts, &d.MaxAttempts,
			&d.LastError, &d.ScheduledAt, &d.DeliveredAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan envío: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// Update persiste el resultado de un intento.
func (r *DeliveryRepo) Update(ctx context.Context, delivery *entity.Delivery) error {
	query := `
		UPDATE envios_factura
		SET estado = $2, intentos = $3, ultimo_error = $4, programado_en = $5, entregado_en = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		delivery.ID, delivery.Status, delivery.Attempts, delivery.LastError,
		delivery.ScheduledAt, delivery.DeliveredAt, delivery.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update envío: %w", err)
	}
	return nil
}
