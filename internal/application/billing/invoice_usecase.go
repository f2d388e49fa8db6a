package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	domainbilling "github.com/tu-usuario/facturacion-api/internal/domain/billing"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// InvoiceUseCase casos de uso de facturación: creación transaccional con
// numeración consecutiva, actualización con reemplazo de detalles, consultas y
// estadísticas.
type InvoiceUseCase struct {
	txRunner     TxRunner
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	sequenceRepo repository.SequenceRepository
	invoiceRepo  repository.InvoiceRepository
	envio        EnvioPolicy
	clock        func() time.Time
	log          *logger.Logger
}

// NewInvoiceUseCase construye el caso de uso. clock nil usa time.Now.
func NewInvoiceUseCase(
	txRunner TxRunner,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	sequenceRepo repository.SequenceRepository,
	invoiceRepo repository.InvoiceRepository,
	envio EnvioPolicy,
	clock func() time.Time,
	log *logger.Logger,
) *InvoiceUseCase {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &InvoiceUseCase{
		txRunner:     txRunner,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		sequenceRepo: sequenceRepo,
		invoiceRepo:  invoiceRepo,
		envio:        envio,
		clock:        clock,
		log:          log,
	}
}

// GetByID obtiene una factura con cliente y detalles-con-producto.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.FacturaResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return uc.loadResponse(ctx, inv)
}

// GetByNumber obtiene una factura por su número renderizado.
func (uc *InvoiceUseCase) GetByNumber(ctx context.Context, number string) (*dto.FacturaResponse, error) {
	inv, err := uc.invoiceRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return uc.loadResponse(ctx, inv)
}

// List lista facturas ordenadas por fecha de emisión descendente.
func (uc *InvoiceUseCase) List(ctx context.Context, limit, offset int) ([]*dto.FacturaResponse, error) {
	limit, offset = normalizePage(limit, offset)
	list, err := uc.invoiceRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.toHeaderResponses(list), nil
}

// ListByCustomer lista las facturas de un cliente.
func (uc *InvoiceUseCase) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*dto.FacturaResponse, error) {
	limit, offset = normalizePage(limit, offset)
	list, err := uc.invoiceRepo.ListByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.toHeaderResponses(list), nil
}

// ListByDateRange lista las facturas emitidas dentro del rango [desde, hasta].
func (uc *InvoiceUseCase) ListByDateRange(ctx context.Context, desde, hasta string, limit, offset int) ([]*dto.FacturaResponse, error) {
	v := domain.NewValidationError()
	from, err := time.Parse(dto.FechaLayout, desde)
	if err != nil {
		v.Add("desde", "La fecha inicial debe ser válida")
	}
	to, err := time.Parse(dto.FechaLayout, hasta)
	if err != nil {
		v.Add("hasta", "La fecha final debe ser válida")
	}
	if v.HasErrors() {
		return nil, v
	}
	limit, offset = normalizePage(limit, offset)
	list, err := uc.invoiceRepo.ListByDateRange(ctx, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.toHeaderResponses(list), nil
}

// Update actualiza cliente y/o fecha de emisión y, si vienen detalles, los
// reemplaza por completo recalculando el total. Todo en una transacción.
// El número de factura y el consecutivo nunca cambian.
func (uc *InvoiceUseCase) Update(ctx context.Context, id string, in dto.UpdateFacturaRequest) (*dto.FacturaResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	v := domain.NewValidationError()
	if in.ClienteID != nil {
		c, err := uc.customerRepo.GetByID(ctx, *in.ClienteID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			v.Add("cliente_id", "El cliente seleccionado no existe")
		} else {
			inv.CustomerID = *in.ClienteID
		}
	}
	if in.FechaEmision != nil {
		t, err := time.Parse(dto.FechaLayout, *in.FechaEmision)
		if err != nil {
			v.Add("fecha_emision", "La fecha de emisión debe ser válida")
		} else {
			inv.IssueDate = t
		}
	}
	products := make(map[string]*entity.Product)
	if in.Detalles != nil {
		if len(*in.Detalles) == 0 {
			v.Add("detalles", "Debe agregar al menos un producto")
		}
		for i, d := range *in.Detalles {
			if err := uc.validateDetalle(ctx, v, i, d, products); err != nil {
				return nil, err
			}
		}
	}
	if v.HasErrors() {
		return nil, v
	}

	inv.UpdatedAt = uc.clock()
	var details []*entity.InvoiceDetail

	err = uc.txRunner.RunInvoicing(ctx, func(
		_ repository.SequenceRepository,
		invoiceRepo repository.InvoiceRepository,
		_ repository.DeliveryRepository,
	) error {
		if in.Detalles != nil {
			// Reemplazo total: borrar detalles anteriores e insertar el nuevo set.
			if err := invoiceRepo.DeleteDetails(ctx, inv.ID); err != nil {
				return err
			}
			for _, d := range *in.Detalles {
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
			inv.Total = domainbilling.Total(details)
		}
		return invoiceRepo.Update(ctx, inv)
	})
	if err != nil {
		uc.log.Error().Err(err).Str("factura_id", inv.ID).Msg("error al actualizar factura")
		return nil, err
	}

	uc.log.Info().Str("factura_id", inv.ID).Msg("factura actualizada")
	return uc.loadResponse(ctx, inv)
}

// Delete elimina una factura con sus detalles.
func (uc *InvoiceUseCase) Delete(ctx context.Context, id string) error {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrNotFound
	}
	err = uc.txRunner.RunInvoicing(ctx, func(
		_ repository.SequenceRepository,
		invoiceRepo repository.InvoiceRepository,
		_ repository.DeliveryRepository,
	) error {
		if err := invoiceRepo.DeleteDetails(ctx, id); err != nil {
			return err
		}
		return invoiceRepo.Delete(ctx, id)
	})
	if err != nil {
		uc.log.Error().Err(err).Str("factura_id", id).Msg("error al eliminar factura")
		return err
	}
	uc.log.Info().Str("factura_id", id).Msg("factura eliminada")
	return nil
}

// Estadisticas devuelve las métricas agregadas de facturación.
func (uc *InvoiceUseCase) Estadisticas(ctx context.Context) (*dto.EstadisticasResponse, error) {
	stats, err := uc.invoiceRepo.Stats(ctx, uc.clock())
	if err != nil {
		return nil, err
	}
	return &dto.EstadisticasResponse{
		TotalFacturas: stats.TotalInvoices,
		TotalVentas:   stats.TotalSales.InexactFloat64(),
		PromedioVenta: stats.AverageSale.InexactFloat64(),
		FacturasHoy:   stats.TodayCount,
		VentasHoy:     stats.TodaySales.InexactFloat64(),
		FacturasMes:   stats.MonthCount,
		VentasMes:     stats.MonthSales.InexactFloat64(),
	}, nil
}

// loadResponse materializa cliente y detalles-con-producto de una cabecera.
func (uc *InvoiceUseCase) loadResponse(ctx context.Context, inv *entity.Invoice) (*dto.FacturaResponse, error) {
	customer, err := uc.customerRepo.GetByID(ctx, inv.CustomerID)
	if err != nil {
		return nil, err
	}
	details, err := uc.invoiceRepo.GetDetails(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	products := make(map[string]*entity.Product, len(details))
	for _, d := range details {
		if _, ok := products[d.ProductID]; ok {
			continue
		}
		p, err := uc.productRepo.GetByID(ctx, d.ProductID)
		if err != nil {
			return nil, err
		}
		products[d.ProductID] = p
	}
	return uc.toResponse(inv, customer, details, products), nil
}

func (uc *InvoiceUseCase) toResponse(inv *entity.Invoice, customer *entity.Customer, details []*entity.InvoiceDetail, products map[string]*entity.Product) *dto.FacturaResponse {
	resp := dto.NewFacturaResponse(inv)
	if customer != nil {
		resp.Cliente = dto.NewClienteResponse(customer)
	}
	for _, d := range details {
		resp.Detalles = append(resp.Detalles, dto.NewDetalleResponse(d, products[d.ProductID]))
	}
	return resp
}

func (uc *InvoiceUseCase) toHeaderResponses(list []*entity.Invoice) []*dto.FacturaResponse {
	out := make([]*dto.FacturaResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, dto.NewFacturaResponse(inv))
	}
	return out
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 15
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
