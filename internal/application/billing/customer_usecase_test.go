package billing_test

import (
	"context"
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

func newCustomerUC(store *memStore) *billing.CustomerUseCase {
	return billing.NewCustomerUseCase(
		&fakeCustomerRepo{store: store},
		&fakeInvoiceRepo{store: store},
		nil,
	)
}

func TestCustomerCreate_EmailDuplicadoRechazado(t *testing.T) {
	store := seedStore()
	uc := newCustomerUC(store)

	_, err := uc.Create(context.Background(), dto.CreateClienteRequest{
		Nombre:         "Otro",
		Email:          "compras@acme.co", // ya existe en el seed
		Identificacion: "800999111",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
}

func TestCustomerCreate_CamposObligatorios(t *testing.T) {
	uc := newCustomerUC(newMemStore())

	_, err := uc.Create(context.Background(), dto.CreateClienteRequest{Email: "sin-arroba"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "nombre")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "identificacion")
}

func TestCustomerDelete_BloqueadoConFacturas(t *testing.T) {
	store := seedStore()
	store.invoices["fac-1"] = &entity.Invoice{
		ID: "fac-1", Number: "FAC000001", CustomerID: "cli-1", SequenceID: "seq-1",
		IssueDate: testNow, Total: decimal.NewFromInt(100),
		CreatedAt: testNow, UpdatedAt: testNow,
	}
	uc := newCustomerUC(store)

	err := uc.Delete(context.Background(), "cli-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotNil(t, store.customers["cli-1"], "el cliente debe seguir existiendo")
}

func TestCustomerDelete_SinFacturas(t *testing.T) {
	store := seedStore()
	uc := newCustomerUC(store)

	require.NoError(t, uc.Delete(context.Background(), "cli-1"))
	assert.NotContains(t, store.customers, "cli-1")

	err := uc.Delete(context.Background(), "cli-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomerGetByID_IncluyeFacturasRecientes(t *testing.T) {
	store := seedStore()
	for i, id := range []string{"fac-1", "fac-2"} {
		store.invoices[id] = &entity.Invoice{
			ID: id, Number: entity.FormatInvoiceNumber("FAC", int64(i+1)),
			CustomerID: "cli-1", SequenceID: "seq-1",
			IssueDate: testNow, Total: decimal.NewFromInt(100),
			CreatedAt: testNow.Add(time.Duration(i) * time.Minute), UpdatedAt: testNow,
		}
	}
	uc := newCustomerUC(store)

	resp, err := uc.GetByID(context.Background(), "cli-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.FacturasCount)
	assert.Len(t, resp.Facturas, 2)

	_, err = uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomerUpdate_CamposParciales(t *testing.T) {
	store := seedStore()
	uc := newCustomerUC(store)

	nuevoNombre := "Acme Renombrada SAS"
	resp, err := uc.Update(context.Background(), "cli-1", dto.UpdateClienteRequest{
		Nombre: &nuevoNombre,
	})
	require.NoError(t, err)
	assert.Equal(t, nuevoNombre, resp.Nombre)
	assert.Equal(t, "compras@acme.co", resp.Email, "los campos no enviados no cambian")
}
