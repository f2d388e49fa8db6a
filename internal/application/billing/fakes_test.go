package billing_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

// memStore almacén en memoria compartido por los repos fake. Los Get* devuelven
// copias, igual que un repositorio real: mutar el resultado no muta el almacén.
type memStore struct {
	customers  map[string]*entity.Customer
	products   map[string]*entity.Product
	sequences  map[string]*entity.Sequence
	invoices   map[string]*entity.Invoice
	details    map[string][]*entity.InvoiceDetail // por factura
	deliveries []*entity.Delivery
}

func newMemStore() *memStore {
	return &memStore{
		customers: make(map[string]*entity.Customer),
		products:  make(map[string]*entity.Product),
		sequences: make(map[string]*entity.Sequence),
		invoices:  make(map[string]*entity.Invoice),
		details:   make(map[string][]*entity.InvoiceDetail),
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.customers {
		cp := *v
		c.customers[k] = &cp
	}
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	for k, v := range s.sequences {
		cp := *v
		c.sequences[k] = &cp
	}
	for k, v := range s.invoices {
		cp := *v
		c.invoices[k] = &cp
	}
	for k, list := range s.details {
		cps := make([]*entity.InvoiceDetail, len(list))
		for i, d := range list {
			cp := *d
			cps[i] = &cp
		}
		c.details[k] = cps
	}
	for _, d := range s.deliveries {
		cp := *d
		c.deliveries = append(c.deliveries, &cp)
	}
	return c
}

// fakeTxRunner simula la transacción: toma un snapshot del almacén y lo
// restaura si el callback falla, imitando el rollback.
type fakeTxRunner struct {
	store *memStore

	// failCreateDetail se propaga al repo de facturas atado a la transacción
	// para forzar un fallo a mitad de la misma.
	failCreateDetail error
}

func (r *fakeTxRunner) RunInvoicing(ctx context.Context, fn func(
	seqRepo repository.SequenceRepository,
	invoiceRepo repository.InvoiceRepository,
	deliveryRepo repository.DeliveryRepository,
) error) error {
	snapshot := r.store.clone()
	err := fn(
		&fakeSequenceRepo{store: r.store},
		&fakeInvoiceRepo{store: r.store, failCreateDetail: r.failCreateDetail},
		&fakeDeliveryRepo{store: r.store},
	)
	if err != nil {
		*r.store = *snapshot
		return err
	}
	return nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

type fakeCustomerRepo struct {
	store *memStore
}

func (r *fakeCustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	for _, ex := range r.store.customers {
		if ex.Email == c.Email || ex.TaxID == c.TaxID {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.store.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	c, ok := r.store.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) GetByEmail(_ context.Context, email string) (*entity.Customer, error) {
	for _, c := range r.store.customers {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Customer, error) {
	for _, c := range r.store.customers {
		if c.TaxID == taxID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	var list []*entity.Customer
	for _, c := range r.store.customers {
		cp := *c
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

func (r *fakeCustomerRepo) Search(_ context.Context, term string, limit, offset int) ([]*entity.Customer, error) {
	var list []*entity.Customer
	for _, c := range r.store.customers {
		if containsFold(c.Name, term) || containsFold(c.Email, term) || containsFold(c.TaxID, term) {
			cp := *c
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	cp := *c
	r.store.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id string) error {
	delete(r.store.customers, id)
	return nil
}

// ── Productos ─────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	store *memStore

	// failGetByID simula una falla de infraestructura al resolver productos.
	failGetByID error
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	for _, ex := range r.store.products {
		if ex.Code == p.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	if r.failGetByID != nil {
		return nil, r.failGetByID
	}
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	for _, p := range r.store.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range r.store.products {
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

func (r *fakeProductRepo) Search(_ context.Context, term string, limit, offset int) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range r.store.products {
		if containsFold(p.Name, term) || containsFold(p.Code, term) || containsFold(p.Description, term) {
			cp := *p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	delete(r.store.products, id)
	return nil
}

// ── Consecutivos ──────────────────────────────────────────────────────────────

type fakeSequenceRepo struct {
	store *memStore
}

func (r *fakeSequenceRepo) Create(_ context.Context, s *entity.Sequence) error {
	cp := *s
	r.store.sequences[s.ID] = &cp
	return nil
}

func (r *fakeSequenceRepo) GetByID(_ context.Context, id string) (*entity.Sequence, error) {
	s, ok := r.store.sequences[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSequenceRepo) List(_ context.Context, limit, offset int) ([]*entity.Sequence, error) {
	var list []*entity.Sequence
	for _, s := range r.store.sequences {
		cp := *s
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Prefix < list[j].Prefix })
	return page(list, limit, offset), nil
}

func (r *fakeSequenceRepo) Next(_ context.Context, id string) (string, error) {
	s, ok := r.store.sequences[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	s.CurrentNumber++
	return entity.FormatInvoiceNumber(s.Prefix, s.CurrentNumber), nil
}

// ── Facturas ──────────────────────────────────────────────────────────────────

type fakeInvoiceRepo struct {
	store *memStore

	// failCreateDetail fuerza un fallo a mitad de transacción para probar
	// que el rollback no deja estado parcial.
	failCreateDetail error
}

func (r *fakeInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	cp := *inv
	r.store.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) CreateDetail(_ context.Context, d *entity.InvoiceDetail) error {
	if r.failCreateDetail != nil {
		return r.failCreateDetail
	}
	cp := *d
	r.store.details[d.InvoiceID] = append(r.store.details[d.InvoiceID], &cp)
	return nil
}

func (r *fakeInvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	cp := *inv
	r.store.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) Delete(_ context.Context, id string) error {
	delete(r.store.invoices, id)
	return nil
}

func (r *fakeInvoiceRepo) DeleteDetails(_ context.Context, invoiceID string) error {
	delete(r.store.details, invoiceID)
	return nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	inv, ok := r.store.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) GetByNumber(_ context.Context, number string) (*entity.Invoice, error) {
	for _, inv := range r.store.invoices {
		if inv.Number == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) GetDetails(_ context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	var list []*entity.InvoiceDetail
	for _, d := range r.store.details[invoiceID] {
		cp := *d
		list = append(list, &cp)
	}
	return list, nil
}

func (r *fakeInvoiceRepo) List(_ context.Context, limit, offset int) ([]*entity.Invoice, error) {
	var list []*entity.Invoice
	for _, inv := range r.store.invoices {
		cp := *inv
		list = append(list, &cp)
	}
	sortByIssueDate(list)
	return page(list, limit, offset), nil
}

func (r *fakeInvoiceRepo) ListByCustomer(_ context.Context, customerID string, limit, offset int) ([]*entity.Invoice, error) {
	var list []*entity.Invoice
	for _, inv := range r.store.invoices {
		if inv.CustomerID == customerID {
			cp := *inv
			list = append(list, &cp)
		}
	}
	sortByIssueDate(list)
	return page(list, limit, offset), nil
}

func (r *fakeInvoiceRepo) ListByDateRange(_ context.Context, from, to time.Time, limit, offset int) ([]*entity.Invoice, error) {
	var list []*entity.Invoice
	for _, inv := range r.store.invoices {
		if !inv.IssueDate.Before(from) && !inv.IssueDate.After(to) {
			cp := *inv
			list = append(list, &cp)
		}
	}
	sortByIssueDate(list)
	return page(list, limit, offset), nil
}

// sortByIssueDate ordena como la tabla real: fecha de emisión descendente y
// created_at descendente como desempate.
func sortByIssueDate(list []*entity.Invoice) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].IssueDate.Equal(list[j].IssueDate) {
			return list[i].IssueDate.After(list[j].IssueDate)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func (r *fakeInvoiceRepo) CountByCustomer(_ context.Context, customerID string) (int64, error) {
	var n int64
	for _, inv := range r.store.invoices {
		if inv.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (r *fakeInvoiceRepo) CountDetailsByProduct(_ context.Context, productID string) (int64, error) {
	var n int64
	for _, list := range r.store.details {
		for _, d := range list {
			if d.ProductID == productID {
				n++
			}
		}
	}
	return n, nil
}

func (r *fakeInvoiceRepo) Stats(_ context.Context, now time.Time) (*repository.Stats, error) {
	s := &repository.Stats{}
	for _, inv := range r.store.invoices {
		s.TotalInvoices++
		s.TotalSales = s.TotalSales.Add(inv.Total)
		if sameDay(inv.IssueDate, now) {
			s.TodayCount++
			s.TodaySales = s.TodaySales.Add(inv.Total)
		}
		if inv.IssueDate.Year() == now.Year() && inv.IssueDate.Month() == now.Month() {
			s.MonthCount++
			s.MonthSales = s.MonthSales.Add(inv.Total)
		}
	}
	if s.TotalInvoices > 0 {
		s.AverageSale = s.TotalSales.DivRound(decimalFromInt(s.TotalInvoices), 2)
	}
	return s, nil
}

// ── Envíos ────────────────────────────────────────────────────────────────────

type fakeDeliveryRepo struct {
	store *memStore
}

func (r *fakeDeliveryRepo) Enqueue(_ context.Context, d *entity.Delivery) error {
	cp := *d
	r.store.deliveries = append(r.store.deliveries, &cp)
	return nil
}

func (r *fakeDeliveryRepo) ClaimDue(_ context.Context, now time.Time, lease time.Duration, limit int) ([]*entity.Delivery, error) {
	var claimed []*entity.Delivery
	for _, d := range r.store.deliveries {
		if len(claimed) >= limit {
			break
		}
		due := d.Status == entity.DeliveryStatusPending && !d.ScheduledAt.After(now)
		stale := d.Status == entity.DeliveryStatusAttempting && !d.UpdatedAt.After(now.Add(-lease))
		if due || stale {
			d.Status = entity.DeliveryStatusAttempting
			d.UpdatedAt = now
			cp := *d
			claimed = append(claimed, &cp)
		}
	}
	return claimed, nil
}

func (r *fakeDeliveryRepo) Update(_ context.Context, d *entity.Delivery) error {
	for i, ex := range r.store.deliveries {
		if ex.ID == d.ID {
			cp := *d
			r.store.deliveries[i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func decimalFromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
