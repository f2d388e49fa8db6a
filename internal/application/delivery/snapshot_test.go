package delivery_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/facturacion-api/internal/application/delivery"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

func snapshotFixture() (*entity.Invoice, *entity.Customer, []*entity.InvoiceDetail, map[string]*entity.Product) {
	at := time.Date(2026, 3, 15, 10, 30, 45, 0, time.UTC)
	inv := &entity.Invoice{
		ID: "fac-1", Number: "FAC000001", CustomerID: "cli-1", SequenceID: "seq-1",
		IssueDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Total:     decimal.RequireFromString("350.00"),
		CreatedAt: at, UpdatedAt: at,
	}
	customer := &entity.Customer{
		ID: "cli-1", Name: "Acme SAS", Email: "compras@acme.co",
		Phone: "3001234567", Address: "Calle 1 # 2-3", TaxID: "900123456",
		CreatedAt: at, UpdatedAt: at,
	}
	details := []*entity.InvoiceDetail{
		{ID: "det-1", InvoiceID: "fac-1", ProductID: "prod-1", Quantity: 2,
			UnitPrice: decimal.RequireFromString("100.00"), Subtotal: decimal.RequireFromString("200.00")},
	}
	products := map[string]*entity.Product{
		"prod-1": {ID: "prod-1", Name: "Teclado", Code: "TEC-01",
			UnitPrice: decimal.RequireFromString("100.00"), Description: "Teclado USB",
			CreatedAt: at, UpdatedAt: at},
	}
	return inv, customer, details, products
}

func TestBuildPayload_ContratoJSON(t *testing.T) {
	inv, customer, details, products := snapshotFixture()

	payload, err := delivery.BuildPayload(inv, customer, details, products)
	require.NoError(t, err)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	// Todo va envuelto bajo "data".
	data, ok := doc["data"].(map[string]any)
	require.True(t, ok, "el payload debe envolver la factura en data")

	assert.Equal(t, "FAC000001", data["numero_factura"])
	assert.Equal(t, "2026-03-15", data["fecha_emision"])
	assert.InDelta(t, 350.00, data["total"], 0.001)
	assert.Equal(t, "cli-1", data["cliente_id"])
	assert.Equal(t, "seq-1", data["consecutivo_id"])
	assert.Equal(t, "2026-03-15 10:30:45", data["created_at"])

	cliente, ok := data["cliente"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme SAS", cliente["nombre"])
	assert.Equal(t, "900123456", cliente["identificacion"])

	detalles, ok := data["detalles"].([]any)
	require.True(t, ok)
	require.Len(t, detalles, 1)
	det := detalles[0].(map[string]any)
	assert.InDelta(t, float64(2), det["cantidad"], 0.001)
	assert.InDelta(t, 100.00, det["precio_unitario"], 0.001)
	assert.InDelta(t, 200.00, det["subtotal"], 0.001)

	producto, ok := det["producto"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "TEC-01", producto["codigo"])
}

func TestBuildPayload_RelacionesFaltantes(t *testing.T) {
	inv, customer, details, products := snapshotFixture()

	_, err := delivery.BuildPayload(nil, customer, details, products)
	assert.Error(t, err)

	_, err = delivery.BuildPayload(inv, nil, details, products)
	assert.Error(t, err)

	_, err = delivery.BuildPayload(inv, customer, nil, products)
	assert.Error(t, err)

	_, err = delivery.BuildPayload(inv, customer, details, map[string]*entity.Product{})
	assert.Error(t, err, "un producto sin materializar debe reportarse, no enviarse a medias")
}
