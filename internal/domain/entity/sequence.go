package entity

import (
	"fmt"
	"time"
)

// Sequence representa un consecutivo de facturación: un contador monótono con
// prefijo que acuña los números de factura legibles (ej: "FAC000001").
// CurrentNumber solo crece y se muta exclusivamente con el incremento atómico
// del repositorio; un número acuñado jamás se reutiliza.
type Sequence struct {
	ID            string
	Prefix        string
	CurrentNumber int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FormatInvoiceNumber renderiza el número de factura: prefijo + valor con
// relleno de ceros a 6 dígitos.
func FormatInvoiceNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s%06d", prefix, n)
}
