package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// ProductUseCase casos de uso para productos.
type ProductUseCase struct {
	repo        repository.ProductRepository
	invoiceRepo repository.InvoiceRepository
	log         *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, invoiceRepo repository.InvoiceRepository, log *logger.Logger) *ProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{repo: repo, invoiceRepo: invoiceRepo, log: log}
}

// Create crea un nuevo producto. El código debe ser único.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductoRequest) (*dto.ProductoResponse, error) {
	v := domain.NewValidationError()
	if in.Nombre == "" {
		v.Add("nombre", "El nombre es obligatorio")
	}
	if in.Codigo == "" {
		v.Add("codigo", "El código es obligatorio")
	}
	if in.PrecioUnitario.LessThan(decimal.Zero) {
		v.Add("precio_unitario", "El precio unitario debe ser mayor o igual a 0")
	}
	if v.HasErrors() {
		return nil, v
	}

	if existing, err := uc.repo.GetByCode(ctx, in.Codigo); err != nil {
		return nil, err
	} else if existing != nil {
		v.Add("codigo", "El código ya está registrado")
		return nil, v
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        in.Nombre,
		Code:        in.Codigo,
		UnitPrice:   in.PrecioUnitario.Round(2),
		Description: in.Descripcion,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.log.Info().Str("producto_id", product.ID).Msg("producto creado")
	return dto.NewProductoResponse(product), nil
}

// GetByID obtiene un producto.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductoResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewProductoResponse(product), nil
}

// GetByCode obtiene un producto por su código único.
func (uc *ProductUseCase) GetByCode(ctx context.Context, code string) (*dto.ProductoResponse, error) {
	product, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewProductoResponse(product), nil
}

// List lista productos ordenados por nombre.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) ([]*dto.ProductoResponse, error) {
	limit, offset = normalizePage(limit, offset)
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return toProductoResponses(list), nil
}

// Search busca productos por nombre, código o descripción.
func (uc *ProductUseCase) Search(ctx context.Context, term string, limit, offset int) ([]*dto.ProductoResponse, error) {
	limit, offset = normalizePage(limit, offset)
	list, err := uc.repo.Search(ctx, term, limit, offset)
	if err != nil {
		return nil, err
	}
	return toProductoResponses(list), nil
}

// Update actualiza un producto. Campos nil no se tocan. Cambiar el precio no
// afecta los detalles de facturas ya emitidas: esos llevan el precio histórico.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductoRequest) (*dto.ProductoResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Nombre != nil {
		product.Name = *in.Nombre
	}
	if in.Codigo != nil {
		product.Code = *in.Codigo
	}
	if in.PrecioUnitario != nil {
		if in.PrecioUnitario.LessThan(decimal.Zero) {
			v := domain.NewValidationError()
			v.Add("precio_unitario", "El precio unitario debe ser mayor o igual a 0")
			return nil, v
		}
		product.UnitPrice = in.PrecioUnitario.Round(2)
	}
	if in.Descripcion != nil {
		product.Description = *in.Descripcion
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.log.Info().Str("producto_id", product.ID).Msg("producto actualizado")
	return dto.NewProductoResponse(product), nil
}

// Delete elimina un producto. Bloqueado mientras esté en facturas.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	count, err := uc.invoiceRepo.CountDetailsByProduct(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrConflict
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("producto_id", id).Msg("producto eliminado")
	return nil
}

func toProductoResponses(list []*entity.Product) []*dto.ProductoResponse {
	out := make([]*dto.ProductoResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.NewProductoResponse(p))
	}
	return out
}
