package entity

import "github.com/shopspring/decimal"

// InvoiceDetail representa una línea de detalle de una factura.
// UnitPrice es el precio al momento de la venta (copiado del producto, registro
// histórico inmutable). Subtotal es derivado: cantidad × precio unitario.
type InvoiceDetail struct {
	ID        string
	InvoiceID string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
