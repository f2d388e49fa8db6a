// Package delivery implementa el despacho asíncrono de facturas al sistema
// externo: cola durable (outbox), reintentos acotados con backoff fijo y
// registro del fallo permanente. El envío es un canal lateral: jamás altera el
// estado de la factura.
package delivery

import (
	"fmt"

	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// Payload es el cuerpo JSON que recibe el sistema externo: un snapshot
// desnormalizado de la factura con cliente y detalles-con-producto embebidos.
// Montos como números, timestamps como YYYY-MM-DD HH:MM:SS y fechas como
// YYYY-MM-DD (el contrato acordado con el receptor).
type Payload struct {
	Data FacturaSnapshot `json:"data"`
}

// FacturaSnapshot factura desnormalizada.
type FacturaSnapshot struct {
	ID            string            `json:"id"`
	NumeroFactura string            `json:"numero_factura"`
	FechaEmision  string            `json:"fecha_emision"`
	Total         float64           `json:"total"`
	ClienteID     string            `json:"cliente_id"`
	Cliente       ClienteSnapshot   `json:"cliente"`
	ConsecutivoID string            `json:"consecutivo_id"`
	Detalles      []DetalleSnapshot `json:"detalles"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
}

// ClienteSnapshot cliente embebido.
type ClienteSnapshot struct {
	ID             string `json:"id"`
	Nombre         string `json:"nombre"`
	Email          string `json:"email"`
	Telefono       string `json:"telefono"`
	Direccion      string `json:"direccion"`
	Identificacion string `json:"identificacion"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// DetalleSnapshot línea con su producto embebido.
type DetalleSnapshot struct {
	ID             string           `json:"id"`
	ProductoID     string           `json:"producto_id"`
	Producto       ProductoSnapshot `json:"producto"`
	Cantidad       int64            `json:"cantidad"`
	PrecioUnitario float64          `json:"precio_unitario"`
	Subtotal       float64          `json:"subtotal"`
}

// ProductoSnapshot producto embebido.
type ProductoSnapshot struct {
	ID             string  `json:"id"`
	Nombre         string  `json:"nombre"`
	Codigo         string  `json:"codigo"`
	PrecioUnitario float64 `json:"precio_unitario"`
	Descripcion    string  `json:"descripcion"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// BuildPayload arma el snapshot a partir de las entidades materializadas.
// Una relación faltante es un bug del llamador, no una condición reintentable:
// se reporta como error para que el envío se marque permanentemente fallido.
func BuildPayload(inv *entity.Invoice, customer *entity.Customer, details []*entity.InvoiceDetail, products map[string]*entity.Product) (*Payload, error) {
	if inv == nil {
		return nil, fmt.Errorf("snapshot: factura nil")
	}
	if customer == nil {
		return nil, fmt.Errorf("snapshot: cliente %s no materializado para la factura %s", inv.CustomerID, inv.ID)
	}
	if len(details) == 0 {
		return nil, fmt.Errorf("snapshot: factura %s sin detalles", inv.ID)
	}

	snap := FacturaSnapshot{
		ID:            inv.ID,
		NumeroFactura: inv.Number,
		FechaEmision:  dto.FormatFecha(inv.IssueDate),
		Total:         inv.Total.InexactFloat64(),
		ClienteID:     inv.CustomerID,
		Cliente: ClienteSnapshot{
			ID:             customer.ID,
			Nombre:         customer.Name,
			Email:          customer.Email,
			Telefono:       customer.Phone,
			Direccion:      customer.Address,
			Identificacion: customer.TaxID,
			CreatedAt:      dto.FormatFechaHora(customer.CreatedAt),
			UpdatedAt:      dto.FormatFechaHora(customer.UpdatedAt),
		},
		ConsecutivoID: inv.SequenceID,
		Detalles:      make([]DetalleSnapshot, 0, len(details)),
		CreatedAt:     dto.FormatFechaHora(inv.CreatedAt),
		UpdatedAt:     dto.FormatFechaHora(inv.UpdatedAt),
	}

	for _, d := range details {
		p := products[d.ProductID]
		if p == nil {
			return nil, fmt.Errorf("snapshot: producto %s no materializado para la factura %s", d.ProductID, inv.ID)
		}
		snap.Detalles = append(snap.Detalles, DetalleSnapshot{
			ID:         d.ID,
			ProductoID: d.ProductID,
			Producto: ProductoSnapshot{
				ID:             p.ID,
				Nombre:         p.Name,
				Codigo:         p.Code,
				PrecioUnitario: p.UnitPrice.InexactFloat64(),
				Descripcion:    p.Description,
				CreatedAt:      dto.FormatFechaHora(p.CreatedAt),
				UpdatedAt:      dto.FormatFechaHora(p.UpdatedAt),
			},
			Cantidad:       d.Quantity,
			PrecioUnitario: d.UnitPrice.InexactFloat64(),
			Subtotal:       d.Subtotal.InexactFloat64(),
		})
	}

	return &Payload{Data: snap}, nil
}
