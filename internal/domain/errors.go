package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// ValidationError agrupa errores de validación por campo.
// Se construye antes de tocar el almacenamiento: un input inválido nunca muta estado.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError crea un error de validación vacío.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add registra el mensaje para un campo (solo el primero por campo).
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// HasErrors indica si hay al menos un campo inválido.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error implementa error con los campos en orden estable.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validación: " + strings.Join(parts, "; ")
}
