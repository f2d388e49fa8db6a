package dto

import "github.com/tu-usuario/facturacion-api/internal/domain/entity"

// CreateConsecutivoRequest body para POST /api/consecutivos.
type CreateConsecutivoRequest struct {
	Prefijo      string `json:"prefijo"`
	NumeroActual int64  `json:"numero_actual,omitempty"` // normalmente 0
}

// ConsecutivoResponse consecutivo en respuestas.
type ConsecutivoResponse struct {
	ID           string `json:"id"`
	Prefijo      string `json:"prefijo"`
	NumeroActual int64  `json:"numero_actual"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// NewConsecutivoResponse mapea la entidad al DTO de respuesta.
func NewConsecutivoResponse(s *entity.Sequence) *ConsecutivoResponse {
	return &ConsecutivoResponse{
		ID:           s.ID,
		Prefijo:      s.Prefix,
		NumeroActual: s.CurrentNumber,
		CreatedAt:    FormatFechaHora(s.CreatedAt),
		UpdatedAt:    FormatFechaHora(s.UpdatedAt),
	}
}
