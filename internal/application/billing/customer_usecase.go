package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// CustomerUseCase casos de uso para clientes.
type CustomerUseCase struct {
	repo        repository.CustomerRepository
	invoiceRepo repository.InvoiceRepository
	log         *logger.Logger
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, invoiceRepo repository.InvoiceRepository, log *logger.Logger) *CustomerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CustomerUseCase{repo: repo, invoiceRepo: invoiceRepo, log: log}
}

// Create crea un nuevo cliente. Email e identificación deben ser únicos.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateClienteRequest) (*dto.ClienteResponse, error) {
	v := domain.NewValidationError()
	if in.Nombre == "" {
		v.Add("nombre", "El nombre es obligatorio")
	}
	if in.Email == "" {
		v.Add("email", "El email es obligatorio")
	} else if !strings.Contains(in.Email, "@") {
		v.Add("email", "El email debe ser válido")
	}
	if in.Identificacion == "" {
		v.Add("identificacion", "La identificación es obligatoria")
	}
	if v.HasErrors() {
		return nil, v
	}

	if existing, err := uc.repo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		v.Add("email", "El email ya está registrado")
	}
	if existing, err := uc.repo.GetByTaxID(ctx, in.Identificacion); err != nil {
		return nil, err
	} else if existing != nil {
		v.Add("identificacion", "La identificación ya está registrada")
	}
	if v.HasErrors() {
		return nil, v
	}

	now := time.Now()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      in.Nombre,
		Email:     in.Email,
		Phone:     in.Telefono,
		Address:   in.Direccion,
		TaxID:     in.Identificacion,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	uc.log.Info().Str("cliente_id", customer.ID).Msg("cliente creado")
	return dto.NewClienteResponse(customer), nil
}

// GetByID obtiene un cliente con sus facturas recientes.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.ClienteDetalleResponse, error) {
	customer, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	count, err := uc.invoiceRepo.CountByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	recent, err := uc.invoiceRepo.ListByCustomer(ctx, id, 10, 0)
	if err != nil {
		return nil, err
	}
	resp := &dto.ClienteDetalleResponse{
		ClienteResponse: *dto.NewClienteResponse(customer),
		FacturasCount:   count,
	}
	for _, inv := range recent {
		resp.Facturas = append(resp.Facturas, *dto.NewFacturaResponse(inv))
	}
	return resp, nil
}

// List lista clientes con paginación.
func (uc *CustomerUseCase) List(ctx context.Context, limit, offset int) ([]*dto.ClienteResponse, error) {
	limit, offset = normalizePage(limit, offset)
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return toClienteResponses(list), nil
}

// Search busca clientes por nombre, email o identificación.
func (uc *CustomerUseCase) Search(ctx context.Context, term string, limit, offset int) ([]*dto.ClienteResponse, error) {
	limit, offset = normalizePage(limit, offset)
	list, err := uc.repo.Search(ctx, term, limit, offset)
	if err != nil {
		return nil, err
	}
	return toClienteResponses(list), nil
}

// Update actualiza un cliente. Campos nil no se tocan.
func (uc *CustomerUseCase) Update(ctx context.Context, id string, in dto.UpdateClienteRequest) (*dto.ClienteResponse, error) {
	customer, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	if in.Nombre != nil {
		customer.Name = *in.Nombre
	}
	if in.Email != nil {
		customer.Email = *in.Email
	}
	if in.Telefono != nil {
		customer.Phone = *in.Telefono
	}
	if in.Direccion != nil {
		customer.Address = *in.Direccion
	}
	if in.Identificacion != nil {
		customer.TaxID = *in.Identificacion
	}
	customer.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	uc.log.Info().Str("cliente_id", customer.ID).Msg("cliente actualizado")
	return dto.NewClienteResponse(customer), nil
}

// Delete elimina un cliente. Bloqueado mientras tenga facturas asociadas.
func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	customer, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.ErrNotFound
	}
	count, err := uc.invoiceRepo.CountByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrConflict
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("cliente_id", id).Msg("cliente eliminado")
	return nil
}

func toClienteResponses(list []*entity.Customer) []*dto.ClienteResponse {
	out := make([]*dto.ClienteResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.NewClienteResponse(c))
	}
	return out
}
