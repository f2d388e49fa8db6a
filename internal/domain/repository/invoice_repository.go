package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// Stats agrega las métricas de facturación para el endpoint de estadísticas.
type Stats struct {
	TotalInvoices int64
	TotalSales    decimal.Decimal
	AverageSale   decimal.Decimal
	TodayCount    int64
	TodaySales    decimal.Decimal
	MonthCount    int64
	MonthSales    decimal.Decimal
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus detalles.
// Los Get* devuelven (nil, nil) cuando no existe el registro.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateDetail(ctx context.Context, detail *entity.InvoiceDetail) error
	// Update actualiza cliente, fecha de emisión y total de la cabecera.
	// El número y el consecutivo nunca cambian.
	Update(ctx context.Context, invoice *entity.Invoice) error
	Delete(ctx context.Context, id string) error
	DeleteDetails(ctx context.Context, invoiceID string) error

	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*entity.Invoice, error)
	GetDetails(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Invoice, error)
	ListByDateRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*entity.Invoice, error)

	// CountByCustomer soporta la regla de negocio que bloquea la eliminación
	// de clientes con facturas.
	CountByCustomer(ctx context.Context, customerID string) (int64, error)
	// CountDetailsByProduct soporta la regla que bloquea la eliminación de
	// productos referenciados por detalles.
	CountDetailsByProduct(ctx context.Context, productID string) (int64, error)

	Stats(ctx context.Context, now time.Time) (*Stats, error)
}
