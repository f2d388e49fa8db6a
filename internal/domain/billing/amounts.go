// Package billing contiene las derivaciones monetarias puras de la facturación.
// La derivación es un paso explícito del algoritmo de construcción, no un hook
// oculto de persistencia: el caso de uso la invoca antes de cada insert/update.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// Subtotal calcula cantidad × precio unitario con aritmética decimal exacta,
// redondeado a 2 decimales (convención monetaria de toda la aplicación).
func Subtotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity)).Round(2)
}

// Total suma los subtotales de los detalles. Invariante: el total de la
// cabecera siempre es exactamente esta suma tras cualquier mutación.
func Total(details []*entity.InvoiceDetail) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.Subtotal)
	}
	return total.Round(2)
}
