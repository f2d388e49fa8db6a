package dto

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// DetalleRequest línea de factura en la petición de creación/actualización.
type DetalleRequest struct {
	ProductoID     string          `json:"producto_id"`
	Cantidad       int64           `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
}

// CreateFacturaRequest body para POST /api/facturas.
type CreateFacturaRequest struct {
	ClienteID     string           `json:"cliente_id"`
	ConsecutivoID string           `json:"consecutivo_id"`
	FechaEmision  string           `json:"fecha_emision"` // YYYY-MM-DD
	Detalles      []DetalleRequest `json:"detalles"`
}

// UpdateFacturaRequest body para PUT /api/facturas/:id. Campos nil no se tocan.
// El número de factura y el consecutivo nunca cambian en una actualización.
type UpdateFacturaRequest struct {
	ClienteID    *string           `json:"cliente_id,omitempty"`
	FechaEmision *string           `json:"fecha_emision,omitempty"`
	Detalles     *[]DetalleRequest `json:"detalles,omitempty"`
}

// DetalleResponse línea de detalle en la respuesta.
type DetalleResponse struct {
	ID             string            `json:"id"`
	ProductoID     string            `json:"producto_id"`
	Producto       *ProductoResponse `json:"producto,omitempty"`
	Cantidad       int64             `json:"cantidad"`
	PrecioUnitario float64           `json:"precio_unitario"`
	Subtotal       float64           `json:"subtotal"`
}

// FacturaResponse factura con relaciones cargadas. Montos como números y
// fechas con los formatos que consumen los clientes del API.
type FacturaResponse struct {
	ID            string            `json:"id"`
	NumeroFactura string            `json:"numero_factura"`
	FechaEmision  string            `json:"fecha_emision"`
	Total         float64           `json:"total"`
	ClienteID     string            `json:"cliente_id"`
	Cliente       *ClienteResponse  `json:"cliente,omitempty"`
	ConsecutivoID string            `json:"consecutivo_id"`
	Detalles      []DetalleResponse `json:"detalles,omitempty"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
}

// NewFacturaResponse mapea la cabecera; cliente y detalles se agregan cuando
// la consulta los carga.
func NewFacturaResponse(inv *entity.Invoice) *FacturaResponse {
	return &FacturaResponse{
		ID:            inv.ID,
		NumeroFactura: inv.Number,
		FechaEmision:  FormatFecha(inv.IssueDate),
		Total:         inv.Total.InexactFloat64(),
		ClienteID:     inv.CustomerID,
		ConsecutivoID: inv.SequenceID,
		CreatedAt:     FormatFechaHora(inv.CreatedAt),
		UpdatedAt:     FormatFechaHora(inv.UpdatedAt),
	}
}

// NewDetalleResponse mapea una línea de detalle; producto opcional.
func NewDetalleResponse(d *entity.InvoiceDetail, p *entity.Product) DetalleResponse {
	resp := DetalleResponse{
		ID:             d.ID,
		ProductoID:     d.ProductID,
		Cantidad:       d.Quantity,
		PrecioUnitario: d.UnitPrice.InexactFloat64(),
		Subtotal:       d.Subtotal.InexactFloat64(),
	}
	if p != nil {
		resp.Producto = NewProductoResponse(p)
	}
	return resp
}

// EstadisticasResponse métricas agregadas de facturación.
type EstadisticasResponse struct {
	TotalFacturas int64   `json:"total_facturas"`
	TotalVentas   float64 `json:"total_ventas"`
	PromedioVenta float64 `json:"promedio_venta"`
	FacturasHoy   int64   `json:"facturas_hoy"`
	VentasHoy     float64 `json:"ventas_hoy"`
	FacturasMes   int64   `json:"facturas_mes"`
	VentasMes     float64 `json:"ventas_mes"`
}
