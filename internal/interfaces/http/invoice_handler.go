package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/facturacion-api/internal/application/billing"
	"github.com/tu-usuario/facturacion-api/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturas (protegido).
type InvoiceHandler struct {
	uc *billing.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create crea una factura: acuña el número desde el consecutivo, calcula el
// total y encola el envío al sistema externo, todo en una transacción.
// POST /api/facturas
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateFacturaRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	factura, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(factura)
}

// GetByID GET /api/facturas/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	factura, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(factura)
}

// GetByNumber GET /api/facturas/numero/:numero
func (h *InvoiceHandler) GetByNumber(c *fiber.Ctx) error {
	factura, err := h.uc.GetByNumber(c.Context(), c.Params("numero"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(factura)
}

// List GET /api/facturas?cliente_id=&desde=&hasta=&limit=15&offset=0
// Con cliente_id filtra por cliente; con desde+hasta filtra por rango de
// fechas de emisión (YYYY-MM-DD, ambos inclusive).
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "15"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	var list []*dto.FacturaResponse
	var err error
	switch {
	case c.Query("cliente_id") != "":
		list, err = h.uc.ListByCustomer(c.Context(), c.Query("cliente_id"), limit, offset)
	case c.Query("desde") != "" || c.Query("hasta") != "":
		list, err = h.uc.ListByDateRange(c.Context(), c.Query("desde"), c.Query("hasta"), limit, offset)
	default:
		list, err = h.uc.List(c.Context(), limit, offset)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ListResponse[*dto.FacturaResponse]{Data: list, Limit: limit, Offset: offset})
}

// Update PUT /api/facturas/:id
// El número de factura y el consecutivo nunca cambian.
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateFacturaRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	factura, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(factura)
}

// Delete DELETE /api/facturas/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Estadisticas GET /api/facturas/estadisticas
func (h *InvoiceHandler) Estadisticas(c *fiber.Ctx) error {
	stats, err := h.uc.Estadisticas(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
