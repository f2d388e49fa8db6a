package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/facturacion-api/internal/application/billing"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

var _ billing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInvoicing inicia una transacción con los repos que participan en la
// creación y mutación de facturas (consecutivo, factura y cola de envíos) y
// hace Commit o Rollback. El incremento del consecutivo y el encolado del
// envío comparten la transacción: o se persiste todo o nada.
func (r *TxRunner) RunInvoicing(ctx context.Context, fn func(
	seqRepo repository.SequenceRepository,
	invoiceRepo repository.InvoiceRepository,
	deliveryRepo repository.DeliveryRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	seqRepo := NewSequenceRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)
	deliveryRepo := NewDeliveryRepository(tx)

	if err := fn(seqRepo, invoiceRepo, deliveryRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
