package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo implementación de SequenceRepository (usable con pool o tx).
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Create persiste un nuevo consecutivo.
func (r *SequenceRepo) Create(ctx context.Context, seq *entity.Sequence) error {
	query := `
		INSERT INTO consecutivos (id, prefijo, numero_actual, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, seq.ID, seq.Prefix, seq.CurrentNumber, seq.CreatedAt, seq.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert consecutivo: %w", err)
	}
	return nil
}

// GetByID obtiene un consecutivo por ID.
func (r *SequenceRepo) GetByID(ctx context.Context, id string) (*entity.Sequence, error) {
	query := `SELECT id, prefijo, numero_actual, created_at, updated_at FROM consecutivos WHERE id = $1`
	var s entity.Sequence
	err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.Prefix, &s.CurrentNumber, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get consecutivo: %w", err)
	}
	return &s, nil
}

// List lista consecutivos con paginación.
func (r *SequenceRepo) List(ctx context.Context, limit, offset int) ([]*entity.Sequence, error) {
	query := `SELECT id, prefijo, numero_actual, created_at, updated_at FROM consecutivos ORDER BY prefijo LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list consecutivos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sequence
	for rows.Next() {
		var s entity.Sequence
		if err := rows.Scan(&s.ID, &s.Prefix, &s.CurrentNumber, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan consecutivo: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Next incrementa atómicamente el contador y devuelve el número de factura
// renderizado. El UPDATE toma el row lock de la fila: dos transacciones
// concurrentes sobre el mismo consecutivo se serializan y cada una ve un
// valor distinto. Ejecutado dentro de la transacción de creación de la
// factura, el rollback deshace también el incremento.
func (r *SequenceRepo) Next(ctx context.Context, id string) (string, error) {
	query := `
		UPDATE consecutivos
		SET numero_actual = numero_actual + 1, updated_at = now()
		WHERE id = $1
		RETURNING prefijo, numero_actual`
	var prefix string
	var current int64
	err := r.q.QueryRow(ctx, query, id).Scan(&prefix, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("next consecutivo: %w", err)
	}
	return entity.FormatInvoiceNumber(prefix, current), nil
}
