package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/facturacion-api/internal/application/billing"
	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
)

// ProductHandler maneja las peticiones HTTP de productos (protegido).
type ProductHandler struct {
	uc *billing.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *billing.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create POST /api/productos
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductoRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	producto, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(producto)
}

// GetByID GET /api/productos/:id
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	producto, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(producto)
}

// GetByCode GET /api/productos/codigo/:codigo
func (h *ProductHandler) GetByCode(c *fiber.Ctx) error {
	producto, err := h.uc.GetByCode(c.Context(), c.Params("codigo"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(producto)
}

// List GET /api/productos?q=&limit=15&offset=0
// Con ?q= busca por nombre, código o descripción.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "15"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	var list []*dto.ProductoResponse
	var err error
	if term := c.Query("q"); term != "" {
		list, err = h.uc.Search(c.Context(), term, limit, offset)
	} else {
		list, err = h.uc.List(c.Context(), limit, offset)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ListResponse[*dto.ProductoResponse]{Data: list, Limit: limit, Offset: offset})
}

// Update PUT /api/productos/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductoRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	producto, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(producto)
}

// Delete DELETE /api/productos/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return conflict(c, "No se puede eliminar el producto porque está referenciado por facturas")
		}
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
