package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto facturable.
// Code es único; el producto no se puede eliminar mientras esté referenciado
// por detalles de factura.
type Product struct {
	ID          string
	Name        string
	Code        string
	UnitPrice   decimal.Decimal // precio de venta, 2 decimales
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
