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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, nombre, email, telefono, direccion, identificacion, created_at, updated_at`

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	query := `
		INSERT INTO clientes (id, nombre, email, telefono, direccion, identificacion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.Address, customer.TaxID,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cliente: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM clientes WHERE id = $1`, id)
}

// GetByEmail obtiene un cliente por email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM clientes WHERE email = $1`, email)
}

// GetByTaxID obtiene un cliente por identificación tributaria.
func (r *CustomerRepo) GetByTaxID(ctx context.Context, taxID string) (*entity.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM clientes WHERE identificacion = $1`, taxID)
}

func (r *CustomerRepo) getOne(ctx context.Context, query string, arg any) (*entity.Customer, error) {
	var c entity.Customer
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.TaxID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	return &c, nil
}

// List lista clientes con paginación, ordenados por nombre.
func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM clientes ORDER BY nombre LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

// Search busca clientes por nombre, email o identificación (coincidencia parcial, sin mayúsculas).
func (r *CustomerRepo) Search(ctx context.Context, term string, limit, offset int) ([]*entity.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM clientes
		WHERE nombre ILIKE $1 OR email ILIKE $1 OR identificacion ILIKE $1
		ORDER BY nombre LIMIT $2 OFFSET $3`
	return r.list(ctx, query, "%"+term+"%", limit, offset)
}

func (r *CustomerRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Customer, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clientes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.TaxID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cliente: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update actualiza un cliente.
func (r *CustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	query := `
		UPDATE clientes
		SET nombre = $2, email = $3, telefono = $4, direccion = $5, identificacion = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.Address, customer.TaxID,
		customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update cliente: %w", err)
	}
	return nil
}

// Delete elimina un cliente por ID.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM clientes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cliente: %w", err)
	}
	return nil
}
