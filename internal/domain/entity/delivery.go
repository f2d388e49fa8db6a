package entity

import "time"

// Estados de un envío de factura al sistema externo.
const (
	DeliveryStatusPending    = "PENDING"    // encolado, esperando scheduled_at
	DeliveryStatusAttempting = "ATTEMPTING" // reclamado por un worker, intento en curso
	DeliveryStatusDelivered  = "DELIVERED"  // el endpoint externo respondió 2xx
	DeliveryStatusFailed     = "FAILED"     // intentos agotados, no se reintenta más
)

// Delivery representa un envío pendiente o resuelto de una factura al sistema
// externo. Se persiste en la misma transacción que crea la factura (outbox), de
// modo que sobrevive reinicios del proceso. Semántica al-menos-una-vez: el
// receptor debe deduplicar por ID de factura.
type Delivery struct {
	ID          string
	InvoiceID   string
	Status      string
	Attempts    int
	MaxAttempts int
	LastError   string
	ScheduledAt time.Time // no se intenta antes de este instante
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanRetry indica si quedan intentos disponibles.
func (d *Delivery) CanRetry() bool {
	return d.Attempts < d.MaxAttempts
}

// MarkDelivered marca el envío como entregado.
func (d *Delivery) MarkDelivered(now time.Time) {
	d.Status = DeliveryStatusDelivered
	d.DeliveredAt = &now
	d.UpdatedAt = now
}

// MarkAttemptFailed registra un intento fallido: reprograma con backoff fijo si
// quedan intentos, o marca el envío como permanentemente fallido.
func (d *Delivery) MarkAttemptFailed(errMsg string, backoff time.Duration, now time.Time) {
	d.Attempts++
	d.LastError = errMsg
	d.UpdatedAt = now
	if d.CanRetry() {
		d.Status = DeliveryStatusPending
		d.ScheduledAt = now.Add(backoff)
		return
	}
	d.Status = DeliveryStatusFailed
}
