package billing

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	domainbilling "github.com/tu-usuario/facturacion-api/internal/domain/billing"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

// Create crea una factura completa en una sola transacción:
//
//	consecutivo → cabecera (total 0) → detalles con subtotal derivado → total → envío encolado
//
// Cualquier falla en cualquier paso hace rollback de todo: no queda factura,
// ni detalle, ni avance del consecutivo, ni envío encolado.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateFacturaRequest) (*dto.FacturaResponse, error) {
	issueDate, customer, products, err := uc.validateCreate(ctx, in)
	if err != nil {
		return nil, err
	}

	now := uc.clock()
	inv := &entity.Invoice{
		ID:         uuid.New().String(),
		CustomerID: in.ClienteID,
		SequenceID: in.ConsecutivoID,
		IssueDate:  issueDate,
		Total:      decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	var details []*entity.InvoiceDetail

	err = uc.txRunner.RunInvoicing(ctx, func(
		seqRepo repository.SequenceRepository,
		invoiceRepo repository.InvoiceRepository,
		deliveryRepo repository.DeliveryRepository,
	) error {
		// 1) Número de factura: incremento atómico del consecutivo.
		number, err := seqRepo.Next(ctx, in.ConsecutivoID)
		if err != nil {
			return err
		}
		inv.Number = number

		// 2) Cabecera con total 0 (se actualiza al final).
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}

		// 3) Detalles: subtotal = cantidad × precio unitario, derivación explícita.
		for _, d := range in.Detalles {
			detail := &entity.InvoiceDetail{
				ID:        uuid.New().String(),
				InvoiceID: inv.ID,
				ProductID: d.ProductoID,
				Quantity:  d.Cantidad,
				UnitPrice: d.PrecioUnitario,
				Subtotal:  domainbilling.Subtotal(d.Cantidad, d.PrecioUnitario),
			}
			if err := invoiceRepo.CreateDetail(ctx, detail); err != nil {
				return err
			}
			details = append(details, detail)
		}

		// 4) Total derivado = suma de subtotales.
		inv.Total = domainbilling.Total(details)
		if err := invoiceRepo.Update(ctx, inv); err != nil {
			return err
		}

		// 5) Encolar el envío en la misma transacción (outbox): si el commit no
		// llega, el envío tampoco existe.
		if uc.envio.Enabled {
			delivery := &entity.Delivery{
				ID:          uuid.New().String(),
				InvoiceID:   inv.ID,
				Status:      entity.DeliveryStatusPending,
				MaxAttempts: uc.envio.MaxAttempts,
				ScheduledAt: now.Add(uc.envio.Delay),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := deliveryRepo.Enqueue(ctx, delivery); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		uc.log.Error().Err(err).Str("cliente_id", in.ClienteID).Msg("error al crear factura")
		return nil, err
	}

	uc.log.Info().
		Str("factura_id", inv.ID).
		Str("numero_factura", inv.Number).
		Msg("factura creada")
	if uc.envio.Enabled {
		uc.log.Info().
			Str("factura_id", inv.ID).
			Str("numero_factura", inv.Number).
			Msg("envío de factura encolado")
	}

	return uc.toResponse(inv, customer, details, products), nil
}

// validateCreate valida el input campo a campo antes de tocar el almacenamiento.
// Un input inválido o con referencias inexistentes jamás consume un número de
// consecutivo ni deja estado parcial.
func (uc *InvoiceUseCase) validateCreate(ctx context.Context, in dto.CreateFacturaRequest) (time.Time, *entity.Customer, map[string]*entity.Product, error) {
	v := domain.NewValidationError()

	var customer *entity.Customer
	if in.ClienteID == "" {
		v.Add("cliente_id", "El cliente es obligatorio")
	} else {
		c, err := uc.customerRepo.GetByID(ctx, in.ClienteID)
		if err != nil {
			return time.Time{}, nil, nil, err
		}
		if c == nil {
			v.Add("cliente_id", "El cliente seleccionado no existe")
		}
		customer = c
	}

	if in.ConsecutivoID == "" {
		v.Add("consecutivo_id", "El consecutivo es obligatorio")
	} else {
		s, err := uc.sequenceRepo.GetByID(ctx, in.ConsecutivoID)
		if err != nil {
			return time.Time{}, nil, nil, err
		}
		if s == nil {
			v.Add("consecutivo_id", "El consecutivo seleccionado no existe")
		}
	}

	var issueDate time.Time
	if in.FechaEmision == "" {
		v.Add("fecha_emision", "La fecha de emisión es obligatoria")
	} else {
		t, err := time.Parse(dto.FechaLayout, in.FechaEmision)
		if err != nil {
			v.Add("fecha_emision", "La fecha de emisión debe ser válida")
		} else {
			issueDate = t
		}
	}

	products := make(map[string]*entity.Product, len(in.Detalles))
	if len(in.Detalles) == 0 {
		v.Add("detalles", "Debe agregar al menos un producto")
	}
	for i, d := range in.Detalles {
		if err := uc.validateDetalle(ctx, v, i, d, products); err != nil {
			return time.Time{}, nil, nil, err
		}
	}

	if v.HasErrors() {
		return time.Time{}, nil, nil, v
	}
	return issueDate, customer, products, nil
}

// validateDetalle valida una línea y resuelve su producto. Si el repositorio
// falla, el error se propaga: una línea sin producto resuelto no puede pasar
// validación.
func (uc *InvoiceUseCase) validateDetalle(ctx context.Context, v *domain.ValidationError, i int, d dto.DetalleRequest, products map[string]*entity.Product) error {
	field := func(name string) string {
		return "detalles." + strconv.Itoa(i) + "." + name
	}
	if d.ProductoID == "" {
		v.Add(field("producto_id"), "El producto es obligatorio")
	} else if _, seen := products[d.ProductoID]; !seen {
		p, err := uc.productRepo.GetByID(ctx, d.ProductoID)
		if err != nil {
			return err
		}
		if p == nil {
			v.Add(field("producto_id"), "El producto seleccionado no existe")
		} else {
			products[d.ProductoID] = p
		}
	}
	if d.Cantidad < 1 {
		v.Add(field("cantidad"), "La cantidad debe ser al menos 1")
	}
	if d.PrecioUnitario.LessThan(decimal.Zero) {
		v.Add(field("precio_unitario"), "El precio unitario debe ser mayor o igual a 0")
	}
	return nil
}
