package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/facturacion-api/internal/application/billing"
	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

var testNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// seedStore prepara un almacén con un cliente, dos productos y un consecutivo
// FAC en cero.
func seedStore() *memStore {
	store := newMemStore()
	store.customers["cli-1"] = &entity.Customer{
		ID: "cli-1", Name: "Acme SAS", Email: "compras@acme.co",
		TaxID: "900123456", CreatedAt: testNow, UpdatedAt: testNow,
	}
	store.products["prod-1"] = &entity.Product{
		ID: "prod-1", Name: "Teclado", Code: "TEC-01",
		UnitPrice: decimal.NewFromInt(100), CreatedAt: testNow, UpdatedAt: testNow,
	}
	store.products["prod-2"] = &entity.Product{
		ID: "prod-2", Name: "Mouse", Code: "MOU-01",
		UnitPrice: decimal.NewFromInt(50), CreatedAt: testNow, UpdatedAt: testNow,
	}
	store.sequences["seq-1"] = &entity.Sequence{
		ID: "seq-1", Prefix: "FAC", CurrentNumber: 0, CreatedAt: testNow, UpdatedAt: testNow,
	}
	return store
}

func newInvoiceUC(store *memStore, tx *fakeTxRunner, envio billing.EnvioPolicy) *billing.InvoiceUseCase {
	return billing.NewInvoiceUseCase(
		tx,
		&fakeCustomerRepo{store: store},
		&fakeProductRepo{store: store},
		&fakeSequenceRepo{store: store},
		&fakeInvoiceRepo{store: store},
		envio,
		fixedClock,
		nil,
	)
}

func defaultEnvio() billing.EnvioPolicy {
	return billing.EnvioPolicy{Enabled: true, Delay: 5 * time.Second, MaxAttempts: 3}
}

func TestCreateFactura_CaminoFeliz(t *testing.T) {
	store := seedStore()
	uc := newInvoiceUC(store, &fakeTxRunner{store: store}, defaultEnvio())

	resp, err := uc.Create(context.Background(), dto.CreateFacturaRequest{
		ClienteID:     "cli-1",
		ConsecutivoID: "seq-1",
		FechaEmision:  "2026-03-15",
		Detalles: []dto.DetalleRequest{
			{ProductoID: "prod-1", Cantidad: 2, PrecioUnitario: decimal.NewFromInt(100)},
			{ProductoID: "prod-2", Cantidad: 3, PrecioUnitario: decimal.NewFromInt(50)},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	// Número acuñado desde el consecutivo con relleno de ceros.
	assert.Equal(t, "FAC000001", resp.NumeroFactura)
	assert.Equal(t, int64(1), store.sequences["seq-1"].CurrentNumber)

	// Total = 2×100 + 3×50.
	assert.InDelta(t, 350.00, resp.Total, 0.001)
	require.Len(t, resp.Detalles, 2)
	assert.InDelta(t, 200.00, resp.Detalles[0].Subtotal, 0.001)
	assert.InDelta(t, 150.00, resp.Detalles[1].Subtotal, 0.001)

	// La cabecera persistida lleva el mismo total.
	persisted := store.invoices[resp.ID]
	require.NotNil(t, persisted)
	assert.True(t, persisted.Total.Equal(decimal.NewFromInt(350)),
		"total persistido: %s", persisted.Total)

	// El envío quedó encolado en la misma transacción, programado tras el delay.
	require.Len(t, store.deliveries, 1)
	d := store.deliveries[0]
	assert.Equal(t, entity.DeliveryStatusPending, d.Status)
	assert.Equal(t, resp.ID, d.InvoiceID)
	assert.Equal(t, 3, d.MaxAttempts)
	assert.Equal(t, testNow.Add(5*time.Second), d.ScheduledAt)
}

func TestCreateFactura_NumeracionSecuencial(t *testing.T) {
	store := seedStore()
	uc := newInvoiceUC(store, &fakeTxRunner{store: store}, defaultEnvio())

	in := dto.CreateFacturaRequest{
		ClienteID:     "cli-1",
		ConsecutivoID: "seq-1",
		FechaEmision:  "2026-03-15",
		Detalles: []dto.DetalleRequest{
			{ProductoID: "prod-1", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(100)},
		},
	}
	first, err := uc.Create(context.Background(), in)
	require.NoError(t, err)
	second, err := uc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "FAC000001", first.NumeroFactura)
	assert.Equal(t, "FAC000002", second.NumeroFactura)
}

func TestCreateFactura_SinDetallesRechazada(t *testing.T) {
	store := seedStore()
	uc := newInvoiceUC(store, &fakeTxRunner{store: store}, defaultEnvio())

	_, err := uc.Create(context.Background(), dto.CreateFacturaRequest{
		ClienteID:     "cli-1",
		ConsecutivoID: "seq-1",
		FechaEmision:  "2026-03-15",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "detalles")

	// Nada se persistió y el consecutivo no avanzó.
	assert.Empty(t, store.invoices)
	assert.Empty(t, store.deliveries)
	assert.Equal(t, int64(0), store.sequences["seq-1"].CurrentNumber)
}

func TestCreateFactura_ClienteInexistente(t *testing.T) {
	store := seedStore()
	uc := newInvoiceUC(store, &fakeTxRunner{store: store}, defaultEnvio())

	_, err := uc.Create(context.Background(), dto.CreateFacturaRequest{
		ClienteID:     "no-existe",
		ConsecutivoID: "seq-1",
		FechaEmision:  "2026-03-15",
		Detalles: []dto.DetalleRequest{
			{ProductoID: "prod-1", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(100)},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "cliente_id")
	assert.Equal(t, int64(0), store.sequences["seq-1"].CurrentNumber,
		"un input inválido no debe consumir números del consecutivo")
}

func TestCreateFactura_ErrorResolviendoProductoAborta(t *testing.T) {
	store := seedStore()
	uc := billing.NewInvoiceUseCase(
		&fakeTxRunner{store: store},
		&fakeCustomerRepo{store: store},
		&fakeProductRepo{store: store, failGetByID: errors.New("db connection reset")},
		&fakeSequenceRepo{store: store},
		&fakeInvoiceRepo{store: store},
		defaultEnvio(),
		fixedClock,
		nil,
	)

	_, err := uc.Create(context.Background(), dto.CreateFacturaRequest{
		ClienteID:     "cli-1",
		ConsecutivoID: "seq-1",
		FechaEmision:  "2026-03-15",
		Detalles: []dto.DetalleRequest{
			{ProductoID: "prod-1", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(100)},
		},
	})
	require.Error(t, err, "una línea con producto sin resolver no puede pasar validación")
	assert.ErrorContains(t, err, "db connection reset")

	// Nada se persistió: ni factura, ni envío, ni avance del consecutivo.
	assert.Empty(t, store.invoices)
	assert.Empty(t, store.deliveries)
	assert.Equal(t, int64(0), store.sequences["seq-1"].CurrentNumber)
}

func TestCreateFactura_ValidacionPorCampo(t *testing.T) {
	store := seedStore()
	uc := newInvoiceUC(store, &fakeTxRunner{store: store}, defaultEnvio())

	_, err := uc.Create(context.Background(), dto.CreateFacturaRequest{
		FechaEmision: "15/03/2026",
		Detalles: []dto.DetalleRequest{
			{ProductoID: "fantasma", Cantidad: 0, PrecioUnitario: decimal.NewFromInt(-5)},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "cliente_id")
	assert.Contains(t, verr.Fields, "consecutivo_id")
	assert.Contains(t, verr.Fields, "fecha_emision")
	assert.Contains(t, verr.Fields, "detalles.0.producto_id")
	assert.Contains(t, verr.Fields, "detalles.0.cantidad")
	assert.Contains(t, verr.Fields, "detalles.0.precio_unitario")
}

func TestCreateFactura_FalloEnTransaccionHaceRollback(t *testing.T) {
	store := seedStore()
	tx := &fakeTxRunner{store: store, failCreateDetail: errors.New("disco lleno")}
	uc := newInvoiceUC(store, tx, defaultEnvio())

	_, err := uc.Create(context.Background(), dto.CreateFacturaRequest{
		ClienteID:     "cli-1",
		ConsecutivoID: "seq-1",
		FechaEmision:  "2026-03-15",
		Detalles: []dto.DetalleRequest{
			{ProductoID: "prod-1", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(100)},
		},
	})
	require.Error(t, err)

	// El rollback deshace la cabecera, el avance del consecutivo y el envío.
	assert.Empty(t, store.invoices)
	assert.Empty(t, store.deliveries)
	assert.Equal(t, int64(0), store.sequences["seq-1"].CurrentNumber)
}

func TestCreateFactura_EnvioDeshabilitadoNoEncola(t *testing.T) {
	store := seedStore()
	uc := newInvoiceUC(store, &fakeTxRunner{store: store}, billing.EnvioPolicy{Enabled: false})

	resp, err := uc.Create(context.Background(), dto.CreateFacturaRequest{
		ClienteID:     "cli-1",
		ConsecutivoID: "seq-1",
		FechaEmision:  "2026-03-15",
		Detalles: []dto.DetalleRequest{
			{ProductoID: "prod-1", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, store.invoices)
	assert.Empty(t, store.deliveries, "con envío deshabilitado no debe encolarse nada")
	assert.Equal(t, "FAC000001", resp.NumeroFactura)
}

func TestUpdateFactura_ReemplazaDetallesYRecalculaTotal(t *testing.T) {
	store := seedStore()
	uc := newInvoiceUC(store, &fakeTxRunner{store: store}, defaultEnvio())

	created, err := uc.Create(context.Background(), dto.CreateFacturaRequest{
		ClienteID:     "cli-1",
		ConsecutivoID: "seq-1",
		FechaEmision:  "2026-03-15",
		Detalles: []dto.DetalleRequest{
			{ProductoID: "prod-1", Cantidad: 2, PrecioUnitario: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	require.InDelta(t, 200.00, created.Total, 0.001)

	nuevos := []dto.DetalleRequest{
		{ProductoID: "prod-2", Cantidad: 4, PrecioUnitario: decimal.NewFromInt(50)},
	}
	updated, err := uc.Update(context.Background(), created.ID, dto.UpdateFacturaRequest{
		Detalles: &nuevos,
	})
	require.NoError(t, err)

	assert.InDelta(t, 200.00, updated.Total, 0.001)
	require.Len(t, updated.Detalles, 1)
	assert.Equal(t, "prod-2", updated.Detalles[0].ProductoID)

	// El número no cambia nunca en una actualización.
	assert.Equal(t, created.NumeroFactura, updated.NumeroFactura)
	assert.Equal(t, int64(1), store.sequences["seq-1"].CurrentNumber,
		"actualizar no debe consumir números del consecutivo")
}

func TestDeleteFactura_EliminaConDetalles(t *testing.T) {
	store := seedStore()
	uc := newInvoiceUC(store, &fakeTxRunner{store: store}, defaultEnvio())

	created, err := uc.Create(context.Background(), dto.CreateFacturaRequest{
		ClienteID:     "cli-1",
		ConsecutivoID: "seq-1",
		FechaEmision:  "2026-03-15",
		Detalles: []dto.DetalleRequest{
			{ProductoID: "prod-1", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), created.ID))
	assert.Empty(t, store.invoices)
	assert.Empty(t, store.details[created.ID])

	err = uc.Delete(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByNumber(t *testing.T) {
	store := seedStore()
	uc := newInvoiceUC(store, &fakeTxRunner{store: store}, defaultEnvio())

	created, err := uc.Create(context.Background(), dto.CreateFacturaRequest{
		ClienteID:     "cli-1",
		ConsecutivoID: "seq-1",
		FechaEmision:  "2026-03-15",
		Detalles: []dto.DetalleRequest{
			{ProductoID: "prod-1", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)

	found, err := uc.GetByNumber(context.Background(), "FAC000001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = uc.GetByNumber(context.Background(), "FAC999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFacturas_OrdenaPorFechaDeEmision(t *testing.T) {
	store := seedStore()
	uc := newInvoiceUC(store, &fakeTxRunner{store: store}, defaultEnvio())

	// La factura registrada primero tiene la emisión más reciente: el listado
	// ordena por fecha de emisión, no por fecha de registro.
	store.invoices["fac-a"] = &entity.Invoice{
		ID: "fac-a", Number: "FAC000001", CustomerID: "cli-1", SequenceID: "seq-1",
		IssueDate: testNow, Total: decimal.NewFromInt(100),
		CreatedAt: testNow, UpdatedAt: testNow,
	}
	store.invoices["fac-b"] = &entity.Invoice{
		ID: "fac-b", Number: "FAC000002", CustomerID: "cli-1", SequenceID: "seq-1",
		IssueDate: testNow.AddDate(0, 0, -3), Total: decimal.NewFromInt(50),
		CreatedAt: testNow.Add(time.Hour), UpdatedAt: testNow.Add(time.Hour),
	}

	list, err := uc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "fac-a", list[0].ID)
	assert.Equal(t, "fac-b", list[1].ID)

	byCustomer, err := uc.ListByCustomer(context.Background(), "cli-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, byCustomer, 2)
	assert.Equal(t, "fac-a", byCustomer[0].ID)
}
