package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

func TestFormatInvoiceNumber(t *testing.T) {
	cases := []struct {
		prefix string
		n      int64
		want   string
	}{
		{"FAC", 1, "FAC000001"},
		{"FAC", 42, "FAC000042"},
		{"FE", 999999, "FE999999"},
		{"FE", 1000000, "FE1000000"}, // más de 6 dígitos: no se trunca
		{"", 7, "000007"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, entity.FormatInvoiceNumber(tc.prefix, tc.n))
	}
}
