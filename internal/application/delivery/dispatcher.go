package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// Config parámetros del dispatcher.
type Config struct {
	Backoff      time.Duration // espera fija entre intentos
	PollInterval time.Duration // frecuencia de sondeo de la cola
	BatchSize    int           // envíos reclamados por ciclo
	ClaimLease   time.Duration // tras cuánta inactividad se retoma un reclamo huérfano
}

// Dispatcher consume la cola durable de envíos: reclama los vencidos,
// materializa el snapshot de la factura, lo envía por HTTP y persiste el
// resultado (entregado, reintento con backoff o fallo permanente).
//
// Los envíos son independientes entre sí: no hay garantía de orden entre
// facturas distintas. El reclamo con SKIP LOCKED garantiza a lo sumo un
// intento en vuelo por envío; la semántica global es al-menos-una-vez.
type Dispatcher struct {
	deliveryRepo repository.DeliveryRepository
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	sender       Sender
	cfg          Config
	clock        func() time.Time
	log          *logger.Logger
}

// NewDispatcher construye el dispatcher. clock nil usa time.Now.
func NewDispatcher(
	deliveryRepo repository.DeliveryRepository,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	sender Sender,
	cfg Config,
	clock func() time.Time,
	log *logger.Logger,
) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.ClaimLease <= 0 {
		cfg.ClaimLease = 5 * time.Minute
	}
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		deliveryRepo: deliveryRepo,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		sender:       sender,
		cfg:          cfg,
		clock:        clock,
		log:          log,
	}
}

// Run sondea la cola hasta que el contexto se cancele.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.Info().
		Dur("poll_interval", d.cfg.PollInterval).
		Int("batch_size", d.cfg.BatchSize).
		Msg("dispatcher de envíos iniciado")

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("dispatcher de envíos detenido")
			return
		case <-ticker.C:
			if _, err := d.ProcessDue(ctx); err != nil {
				d.log.Error().Err(err).Msg("error sondeando la cola de envíos")
			}
		}
	}
}

// ProcessDue reclama y procesa un lote de envíos vencidos. Devuelve cuántos
// intentos se ejecutaron.
func (d *Dispatcher) ProcessDue(ctx context.Context) (int, error) {
	due, err := d.deliveryRepo.ClaimDue(ctx, d.clock(), d.cfg.ClaimLease, d.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("reclamar envíos: %w", err)
	}
	for _, dl := range due {
		d.attempt(ctx, dl)
	}
	return len(due), nil
}

// snapshotError señala que el snapshot no puede construirse porque falta una
// relación o el payload es inválido: la causa no es transitoria y reintentar
// no ayuda. Las fallas de lectura del repositorio NO llevan esta marca.
type snapshotError struct {
	cause error
}

func (e *snapshotError) Error() string { return e.cause.Error() }
func (e *snapshotError) Unwrap() error { return e.cause }

// attempt ejecuta un intento de envío y persiste el resultado. Nunca retorna
// error: toda falla queda registrada en el envío mismo.
func (d *Dispatcher) attempt(ctx context.Context, dl *entity.Delivery) {
	inv, body, err := d.materialize(ctx, dl.InvoiceID)
	if err != nil {
		var snapErr *snapshotError
		if errors.As(err, &snapErr) {
			// Relación faltante o snapshot imposible: bug, no condición transitoria.
			d.markFailed(ctx, dl, inv, err.Error())
			return
		}
		// Falla de lectura transitoria: consume un intento y se reintenta.
		d.recordAttemptFailure(ctx, dl, inv, err.Error())
		return
	}

	status, err := d.sender.Send(ctx, body)
	if err == nil && status >= 200 && status < 300 {
		dl.MarkDelivered(d.clock())
		if uErr := d.deliveryRepo.Update(ctx, dl); uErr != nil {
			d.log.Error().Err(uErr).Str("envio_id", dl.ID).Msg("no se pudo persistir el envío entregado")
			return
		}
		d.log.Info().
			Str("factura_id", inv.ID).
			Str("numero_factura", inv.Number).
			Int("status_code", status).
			Msg("factura enviada exitosamente al sistema externo")
		return
	}

	reason := fmt.Sprintf("status %d", status)
	if err != nil {
		reason = err.Error()
	}
	d.recordAttemptFailure(ctx, dl, inv, reason)
}

// recordAttemptFailure registra un intento fallido: reprograma con backoff si
// quedan intentos, o marca el fallo permanente.
func (d *Dispatcher) recordAttemptFailure(ctx context.Context, dl *entity.Delivery, inv *entity.Invoice, reason string) {
	dl.MarkAttemptFailed(reason, d.cfg.Backoff, d.clock())
	if uErr := d.deliveryRepo.Update(ctx, dl); uErr != nil {
		d.log.Error().Err(uErr).Str("envio_id", dl.ID).Msg("no se pudo persistir el resultado del intento")
		return
	}

	numero := ""
	if inv != nil {
		numero = inv.Number
	}
	if dl.Status == entity.DeliveryStatusFailed {
		d.log.Error().
			Str("factura_id", dl.InvoiceID).
			Str("numero_factura", numero).
			Int("intentos", dl.Attempts).
			Str("ultimo_error", dl.LastError).
			Msg("envío de factura falló después de todos los intentos")
		return
	}
	d.log.Warn().
		Str("factura_id", dl.InvoiceID).
		Str("numero_factura", numero).
		Int("intento", dl.Attempts).
		Str("error", reason).
		Time("proximo_intento", dl.ScheduledAt).
		Msg("error al enviar factura al sistema externo, se reintentará")
}

// materialize carga la factura con cliente y detalles-con-producto y serializa
// el payload. Una relación inexistente se devuelve como snapshotError; un
// error del repositorio se devuelve tal cual (condición transitoria).
func (d *Dispatcher) materialize(ctx context.Context, invoiceID string) (*entity.Invoice, []byte, error) {
	inv, err := d.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("cargar factura %s: %w", invoiceID, err)
	}
	if inv == nil {
		return nil, nil, &snapshotError{cause: fmt.Errorf("factura %s no existe", invoiceID)}
	}
	customer, err := d.customerRepo.GetByID(ctx, inv.CustomerID)
	if err != nil {
		return inv, nil, fmt.Errorf("cargar cliente %s: %w", inv.CustomerID, err)
	}
	details, err := d.invoiceRepo.GetDetails(ctx, inv.ID)
	if err != nil {
		return inv, nil, fmt.Errorf("cargar detalles de %s: %w", inv.ID, err)
	}
	products := make(map[string]*entity.Product, len(details))
	for _, det := range details {
		if _, ok := products[det.ProductID]; ok {
			continue
		}
		p, err := d.productRepo.GetByID(ctx, det.ProductID)
		if err != nil {
			return inv, nil, fmt.Errorf("cargar producto %s: %w", det.ProductID, err)
		}
		products[det.ProductID] = p
	}

	payload, err := BuildPayload(inv, customer, details, products)
	if err != nil {
		return inv, nil, &snapshotError{cause: err}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return inv, nil, &snapshotError{cause: fmt.Errorf("serializar payload: %w", err)}
	}
	return inv, body, nil
}

// markFailed marca un envío como permanentemente fallido sin consumir intentos
// restantes (la causa no es transitoria).
func (d *Dispatcher) markFailed(ctx context.Context, dl *entity.Delivery, inv *entity.Invoice, reason string) {
	now := d.clock()
	dl.Status = entity.DeliveryStatusFailed
	dl.LastError = reason
	dl.UpdatedAt = now
	if err := d.deliveryRepo.Update(ctx, dl); err != nil {
		d.log.Error().Err(err).Str("envio_id", dl.ID).Msg("no se pudo persistir el fallo del envío")
	}
	ev := d.log.Error().
		Str("envio_id", dl.ID).
		Str("factura_id", dl.InvoiceID).
		Str("ultimo_error", reason)
	if inv != nil {
		ev = ev.Str("numero_factura", inv.Number)
	}
	ev.Msg("envío de factura falló permanentemente: snapshot imposible")
}
