package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/store/internal/domain"
	"github.com/vladislavdragonenkov/store/internal/pagination"
)

// invoiceReader читает зафиксированные счета.
type invoiceReader struct {
	store *Store
}

func (r *invoiceReader) GetByID(_ context.Context, id int64) (domain.Invoice, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	invoice, ok := r.store.invoices[id]
	if !ok {
		return domain.Invoice{}, domain.ErrInvoiceNotFound
	}
	return invoice.Clone(), nil
}

func (r *invoiceReader) GetByIDForUser(_ context.Context, id, userID int64) (domain.Invoice, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	invoice, ok := r.store.invoices[id]
	if !ok || invoice.UserID != userID {
		return domain.Invoice{}, domain.ErrInvoiceNotFound
	}
	return invoice.Clone(), nil
}

func (r *invoiceReader) GetPaged(_ context.Context, filter domain.InvoiceFilter) (pagination.Page[domain.Invoice], error) {
	return r.paged(filter, 0)
}

func (r *invoiceReader) GetPagedForUser(_ context.Context, userID int64, filter domain.InvoiceFilter) (pagination.Page[domain.Invoice], error) {
	return r.paged(filter, userID)
}

// paged собирает выборку; scopeUserID=0 означает отсутствие привязки к пользователю.
func (r *invoiceReader) paged(filter domain.InvoiceFilter, scopeUserID int64) (pagination.Page[domain.Invoice], error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]domain.Invoice, 0, len(r.store.invoices))
	for _, invoice := range r.store.invoices {
		if scopeUserID != 0 && invoice.UserID != scopeUserID {
			continue
		}
		if filter.From != nil && invoice.CreatedAt.Before(filter.From.UTC()) {
			continue
		}
		if filter.To != nil && invoice.CreatedAt.After(filter.To.UTC()) {
			continue
		}
		matched = append(matched, invoice.Clone())
	}

	sortInvoices(matched, filter.NormalizedOrder())

	return pagination.Paginate(matched, filter.Page, filter.PageSize), nil
}

// sortInvoices упорядочивает выборку; суммы сравниваются как decimal,
// без приведения к плавающей точке.
func sortInvoices(invoices []domain.Invoice, order string) {
	sort.Slice(invoices, func(i, j int) bool {
		a, b := &invoices[i], &invoices[j]
		switch order {
		case domain.InvoiceOrderDateAsc:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		case domain.InvoiceOrderAmountDesc:
			if cmp := a.TotalAmount.Cmp(b.TotalAmount); cmp != 0 {
				return cmp > 0
			}
			return a.ID > b.ID
		case domain.InvoiceOrderAmountAsc:
			if cmp := a.TotalAmount.Cmp(b.TotalAmount); cmp != 0 {
				return cmp < 0
			}
			return a.ID < b.ID
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
	})
}

var _ domain.InvoiceReader = (*invoiceReader)(nil)
