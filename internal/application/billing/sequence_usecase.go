package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// SequenceUseCase casos de uso para consecutivos de facturación.
// El incremento del contador no se expone aquí: solo ocurre dentro de la
// transacción de creación de facturas.
type SequenceUseCase struct {
	repo repository.SequenceRepository
	log  *logger.Logger
}

// NewSequenceUseCase construye el caso de uso.
func NewSequenceUseCase(repo repository.SequenceRepository, log *logger.Logger) *SequenceUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SequenceUseCase{repo: repo, log: log}
}

// Create crea un consecutivo nuevo.
func (uc *SequenceUseCase) Create(ctx context.Context, in dto.CreateConsecutivoRequest) (*dto.ConsecutivoResponse, error) {
	v := domain.NewValidationError()
	if in.Prefijo == "" {
		v.Add("prefijo", "El prefijo es obligatorio")
	}
	if in.NumeroActual < 0 {
		v.Add("numero_actual", "El número actual no puede ser negativo")
	}
	if v.HasErrors() {
		return nil, v
	}
	now := time.Now()
	seq := &entity.Sequence{
		ID:            uuid.New().String(),
		Prefix:        in.Prefijo,
		CurrentNumber: in.NumeroActual,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, seq); err != nil {
		return nil, err
	}
	uc.log.Info().Str("consecutivo_id", seq.ID).Str("prefijo", seq.Prefix).Msg("consecutivo creado")
	return dto.NewConsecutivoResponse(seq), nil
}

// GetByID obtiene un consecutivo.
func (uc *SequenceUseCase) GetByID(ctx context.Context, id string) (*dto.ConsecutivoResponse, error) {
	seq, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seq == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewConsecutivoResponse(seq), nil
}

// List lista los consecutivos.
func (uc *SequenceUseCase) List(ctx context.Context, limit, offset int) ([]*dto.ConsecutivoResponse, error) {
	limit, offset = normalizePage(limit, offset)
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ConsecutivoResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.NewConsecutivoResponse(s))
	}
	return out, nil
}
