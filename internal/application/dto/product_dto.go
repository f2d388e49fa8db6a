package dto

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// CreateProductoRequest body para POST /api/productos.
type CreateProductoRequest struct {
	Nombre         string          `json:"nombre"`
	Codigo         string          `json:"codigo"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Descripcion    string          `json:"descripcion,omitempty"`
}

// UpdateProductoRequest body para PUT /api/productos/:id. Campos nil no se tocan.
type UpdateProductoRequest struct {
	Nombre         *string          `json:"nombre,omitempty"`
	Codigo         *string          `json:"codigo,omitempty"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario,omitempty"`
	Descripcion    *string          `json:"descripcion,omitempty"`
}

// ProductoResponse producto en respuestas. El precio va como número (float);
// la precisión decimal solo vive en la capa de dominio.
type ProductoResponse struct {
	ID             string  `json:"id"`
	Nombre         string  `json:"nombre"`
	Codigo         string  `json:"codigo"`
	PrecioUnitario float64 `json:"precio_unitario"`
	Descripcion    string  `json:"descripcion,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// NewProductoResponse mapea la entidad al DTO de respuesta.
func NewProductoResponse(p *entity.Product) *ProductoResponse {
	return &ProductoResponse{
		ID:             p.ID,
		Nombre:         p.Name,
		Codigo:         p.Code,
		PrecioUnitario: p.UnitPrice.InexactFloat64(),
		Descripcion:    p.Description,
		CreatedAt:      FormatFechaHora(p.CreatedAt),
		UpdatedAt:      FormatFechaHora(p.UpdatedAt),
	}
}
