package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice representa la cabecera de una factura.
// Number es único e inmutable una vez asignado por el consecutivo.
// Total es derivado: siempre igual a la suma de los subtotales de sus detalles.
type Invoice struct {
	ID         string
	Number     string
	CustomerID string
	SequenceID string
	IssueDate  time.Time
	Total      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
