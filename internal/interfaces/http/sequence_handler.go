package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/facturacion-api/internal/application/billing"
	"github.com/tu-usuario/facturacion-api/internal/application/dto"
)

// SequenceHandler maneja las peticiones HTTP de consecutivos (protegido).
// Los consecutivos no se actualizan ni eliminan por API: el contador solo lo
// muta la creación de facturas.
type SequenceHandler struct {
	uc *billing.SequenceUseCase
}

// NewSequenceHandler construye el handler.
func NewSequenceHandler(uc *billing.SequenceUseCase) *SequenceHandler {
	return &SequenceHandler{uc: uc}
}

// Create POST /api/consecutivos
func (h *SequenceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateConsecutivoRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	consecutivo, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(consecutivo)
}

// GetByID GET /api/consecutivos/:id
func (h *SequenceHandler) GetByID(c *fiber.Ctx) error {
	consecutivo, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(consecutivo)
}

// List GET /api/consecutivos?limit=15&offset=0
func (h *SequenceHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "15"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	list, err := h.uc.List(c.Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ListResponse[*dto.ConsecutivoResponse]{Data: list, Limit: limit, Offset: offset})
}
