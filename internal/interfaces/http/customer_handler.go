package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/facturacion-api/internal/application/billing"
	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
)

// CustomerHandler maneja las peticiones HTTP de clientes (protegido).
type CustomerHandler struct {
	uc *billing.CustomerUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *billing.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

// Create POST /api/clientes
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateClienteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cliente, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cliente)
}

// GetByID GET /api/clientes/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	cliente, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cliente)
}

// List GET /api/clientes?q=&limit=15&offset=0
// Con ?q= busca por nombre, email o identificación.
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "15"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	var list []*dto.ClienteResponse
	var err error
	if term := c.Query("q"); term != "" {
		list, err = h.uc.Search(c.Context(), term, limit, offset)
	} else {
		list, err = h.uc.List(c.Context(), limit, offset)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ListResponse[*dto.ClienteResponse]{Data: list, Limit: limit, Offset: offset})
}

// Update PUT /api/clientes/:id
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateClienteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cliente, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cliente)
}

// Delete DELETE /api/clientes/:id
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return conflict(c, "No se puede eliminar el cliente porque tiene facturas asociadas")
		}
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
