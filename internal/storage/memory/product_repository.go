package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/vladislavdragonenkov/store/internal/domain"
	"github.com/vladislavdragonenkov/store/internal/pagination"
)

// productReader читает зафиксированное состояние каталога.
type productReader struct {
	store *Store
}

// GetPaged возвращает страницу неудалённых товаров, новые первыми.
func (r *productReader) GetPaged(_ context.Context, filter domain.ProductFilter) (pagination.Page[domain.Product], error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]domain.Product, 0, len(r.store.products))
	for _, product := range r.store.products {
		if !matchesFilter(&product, filter) {
			continue
		}
		matched = append(matched, product.Clone())
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID > matched[j].ID
	})

	return pagination.Paginate(matched, filter.Page, filter.PageSize), nil
}

// GetByID возвращает товар с переводами или ErrProductNotFound.
func (r *productReader) GetByID(_ context.Context, id int64) (domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	product, ok := r.store.products[id]
	if !ok || product.IsDeleted {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product.Clone(), nil
}

// matchesFilter применяет единый предикат активности и каталожные фильтры.
func matchesFilter(p *domain.Product, filter domain.ProductFilter) bool {
	if p.IsDeleted {
		return false
	}
	if filter.InStockOnly && p.StockQuantity <= 0 {
		return false
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	if search == "" {
		return true
	}
	for _, tr := range p.Translations {
		if strings.Contains(strings.ToLower(tr.Name), search) {
			return true
		}
		if tr.Description != "" && strings.Contains(strings.ToLower(tr.Description), search) {
			return true
		}
	}
	return false
}

var _ domain.ProductReader = (*productReader)(nil)
