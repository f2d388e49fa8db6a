package repository

import (
	"context"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
// Los Get* devuelven (nil, nil) cuando no existe el registro.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByEmail(ctx context.Context, email string) (*entity.Customer, error)
	GetByTaxID(ctx context.Context, taxID string) (*entity.Customer, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Customer, error)
	// Search busca por nombre, email o identificación (coincidencia parcial).
	Search(ctx context.Context, term string, limit, offset int) ([]*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id string) error
}
