package dto

import "github.com/tu-usuario/facturacion-api/internal/domain/entity"

// CreateClienteRequest body para POST /api/clientes.
type CreateClienteRequest struct {
	Nombre         string `json:"nombre"`
	Email          string `json:"email"`
	Telefono       string `json:"telefono,omitempty"`
	Direccion      string `json:"direccion,omitempty"`
	Identificacion string `json:"identificacion"`
}

// UpdateClienteRequest body para PUT /api/clientes/:id. Campos nil no se tocan.
type UpdateClienteRequest struct {
	Nombre         *string `json:"nombre,omitempty"`
	Email          *string `json:"email,omitempty"`
	Telefono       *string `json:"telefono,omitempty"`
	Direccion      *string `json:"direccion,omitempty"`
	Identificacion *string `json:"identificacion,omitempty"`
}

// ClienteResponse cliente en respuestas.
type ClienteResponse struct {
	ID             string `json:"id"`
	Nombre         string `json:"nombre"`
	Email          string `json:"email"`
	Telefono       string `json:"telefono,omitempty"`
	Direccion      string `json:"direccion,omitempty"`
	Identificacion string `json:"identificacion"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// ClienteDetalleResponse cliente con el conteo y las facturas más recientes
// (GET /api/clientes/:id).
type ClienteDetalleResponse struct {
	ClienteResponse
	FacturasCount int64             `json:"facturas_count"`
	Facturas      []FacturaResponse `json:"facturas,omitempty"`
}

// NewClienteResponse mapea la entidad al DTO de respuesta.
func NewClienteResponse(c *entity.Customer) *ClienteResponse {
	return &ClienteResponse{
		ID:             c.ID,
		Nombre:         c.Name,
		Email:          c.Email,
		Telefono:       c.Phone,
		Direccion:      c.Address,
		Identificacion: c.TaxID,
		CreatedAt:      FormatFechaHora(c.CreatedAt),
		UpdatedAt:      FormatFechaHora(c.UpdatedAt),
	}
}
