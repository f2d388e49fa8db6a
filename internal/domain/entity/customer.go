package entity

import "time"

// Customer representa un cliente de facturación.
// Email e identificación tributaria son únicos; el cliente no se puede
// eliminar mientras tenga facturas asociadas.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	TaxID     string // NIT o cédula
	CreatedAt time.Time
	UpdatedAt time.Time
}
