package dto

import "time"

// Formatos de fecha del API (los mismos del payload de envío).
const (
	FechaLayout     = "2006-01-02"
	FechaHoraLayout = "2006-01-02 15:04:05"
)

// FormatFecha renderiza una fecha como YYYY-MM-DD.
func FormatFecha(t time.Time) string {
	return t.Format(FechaLayout)
}

// FormatFechaHora renderiza un timestamp como YYYY-MM-DD HH:MM:SS.
func FormatFechaHora(t time.Time) string {
	return t.Format(FechaHoraLayout)
}

// ErrorResponse cuerpo de error estándar del API.
// Errores trae el detalle por campo cuando la falla es de validación.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errores map[string]string `json:"errores,omitempty"`
}

// ListResponse envoltura paginada para listados.
type ListResponse[T any] struct {
	Data   []T `json:"data"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
