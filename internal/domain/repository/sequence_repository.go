package repository

import (
	"context"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// SequenceRepository define el puerto de persistencia para los consecutivos.
type SequenceRepository interface {
	Create(ctx context.Context, seq *entity.Sequence) error
	GetByID(ctx context.Context, id string) (*entity.Sequence, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Sequence, error)
	// Next incrementa atómicamente el contador y devuelve el número de factura
	// renderizado (prefijo + 6 dígitos). El incremento serializa a los
	// creadores concurrentes sobre la misma fila: dos llamadas jamás observan
	// el mismo valor. Si el consecutivo no existe retorna domain.ErrNotFound.
	// Ejecutado dentro de la transacción de creación, un rollback también
	// deshace el incremento (ningún número se consume en una creación fallida).
	Next(ctx context.Context, id string) (string, error)
}
