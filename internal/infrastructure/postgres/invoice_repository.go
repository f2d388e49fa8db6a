package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, numero_factura, cliente_id, consecutivo_id, fecha_emision, total, created_at, updated_at`

// Create persiste la cabecera de una factura.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO facturas (id, numero_factura, cliente_id, consecutivo_id, fecha_emision, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.Number, invoice.CustomerID, invoice.SequenceID,
		invoice.IssueDate, invoice.Total, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert factura: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de detalle.
func (r *InvoiceRepo) CreateDetail(ctx context.Context, detail *entity.InvoiceDetail) error {
	query := `
		INSERT INTO factura_detalles (id, factura_id, producto_id, cantidad, precio_unitario, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		detail.ID, detail.InvoiceID, detail.ProductID, detail.Quantity, detail.UnitPrice, detail.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert detalle: %w", err)
	}
	return nil
}

// Update actualiza cliente, fecha de emisión y total de la cabecera.
// numero_factura y consecutivo_id no se tocan: el número es inmutable.
func (r *InvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		UPDATE facturas SET cliente_id = $2, fecha_emision = $3, total = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.CustomerID, invoice.IssueDate, invoice.Total, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update factura: %w", err)
	}
	return nil
}

// Delete elimina la cabecera de una factura.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM facturas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete factura: %w", err)
	}
	return nil
}

// DeleteDetails elimina todos los detalles de una factura.
func (r *InvoiceRepo) DeleteDetails(ctx context.Context, invoiceID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM factura_detalles WHERE factura_id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("delete detalles: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM facturas WHERE id = $1`, id)
}

// GetByNumber obtiene una factura por número.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM facturas WHERE numero_factura = $1`, number)
}

func (r *InvoiceRepo) getOne(ctx context.Context, query string, arg any) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&inv.ID, &inv.Number, &inv.CustomerID, &inv.SequenceID,
		&inv.IssueDate, &inv.Total, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get factura: %w", err)
	}
	return &inv, nil
}

// GetDetails obtiene los detalles de una factura en orden de inserción.
func (r *InvoiceRepo) GetDetails(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	query := `
		SELECT id, factura_id, producto_id, cantidad, precio_unitario, subtotal
		FROM factura_detalles WHERE factura_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get detalles: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceDetail
	for rows.Next() {
		var d entity.InvoiceDetail
		if err := rows.Scan(&d.ID, &d.InvoiceID, &d.ProductID, &d.Quantity, &d.UnitPrice, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scan detalle: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// List lista facturas con paginación, las de emisión más reciente primero.
func (r *InvoiceRepo) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM facturas ORDER BY fecha_emision DESC, created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

// ListByCustomer lista las facturas de un cliente, las de emisión más reciente primero.
func (r *InvoiceRepo) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + ` FROM facturas
		WHERE cliente_id = $1 ORDER BY fecha_emision DESC, created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, customerID, limit, offset)
}

// ListByDateRange lista facturas emitidas en el rango [from, to], ambos inclusive.
func (r *InvoiceRepo) ListByDateRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*entity.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + ` FROM facturas
		WHERE fecha_emision >= $1 AND fecha_emision <= $2
		ORDER BY fecha_emision DESC, created_at DESC LIMIT $3 OFFSET $4`
	return r.list(ctx, query, from, to, limit, offset)
}

func (r *InvoiceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list facturas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.SequenceID,
			&inv.IssueDate, &inv.Total, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan factura: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

// CountByCustomer cuenta las facturas de un cliente.
func (r *InvoiceRepo) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM facturas WHERE cliente_id = $1`, customerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count facturas por cliente: %w", err)
	}
	return n, nil
}

// CountDetailsByProduct cuenta los detalles que referencian un producto.
func (r *InvoiceRepo) CountDetailsByProduct(ctx context.Context, productID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM factura_detalles WHERE producto_id = $1`, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count detalles por producto: %w", err)
	}
	return n, nil
}

// Stats agrega totales, conteos y promedios en una sola pasada usando
// agregados con FILTER. now fija el día y el mes de referencia.
func (r *InvoiceRepo) Stats(ctx context.Context, now time.Time) (*repository.Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(total), 0),
			COALESCE(AVG(total), 0),
			COUNT(*) FILTER (WHERE fecha_emision::date = $1::date),
			COALESCE(SUM(total) FILTER (WHERE fecha_emision::date = $1::date), 0),
			COUNT(*) FILTER (WHERE date_trunc('month', fecha_emision) = date_trunc('month', $1::timestamp)),
			COALESCE(SUM(total) FILTER (WHERE date_trunc('month', fecha_emision) = date_trunc('month', $1::timestamp)), 0)
		FROM facturas`
	var s repository.Stats
	err := r.q.QueryRow(ctx, query, now).Scan(
		&s.TotalInvoices, &s.TotalSales, &s.AverageSale,
		&s.TodayCount, &s.TodaySales,
		&s.MonthCount, &s.MonthSales,
	)
	if err != nil {
		return nil, fmt.Errorf("stats facturas: %w", err)
	}
	return &s, nil
}
