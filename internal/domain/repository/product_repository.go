package repository

import (
	"context"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product.
// Los Get* devuelven (nil, nil) cuando no existe el registro.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// Search busca por nombre, código o descripción (coincidencia parcial).
	Search(ctx context.Context, term string, limit, offset int) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
}
