package domain

import (
	"strings"
	"time"
)

// Коды сортировки для выборки счетов. Нераспознанный код трактуется как дата по убыванию.
const (
	InvoiceOrderDateDesc   = "date_desc"
	InvoiceOrderDateAsc    = "date_asc"
	InvoiceOrderAmountDesc = "amount_desc"
	InvoiceOrderAmountAsc  = "amount_asc"
)

// ProductFilter описывает параметры каталожной выборки.
type ProductFilter struct {
	// Search — подстрочный поиск без учёта регистра по названию или описанию любого перевода.
	Search string
	// InStockOnly оставляет только товары с остатком > 0.
	InStockOnly bool
	Page        int
	PageSize    int
}

// InvoiceFilter описывает параметры выборки счетов.
type InvoiceFilter struct {
	// From/To — включительные границы по времени создания (приводятся к UTC).
	From     *time.Time
	To       *time.Time
	OrderBy  string
	Page     int
	PageSize int
}

// NormalizedOrder возвращает распознанный код сортировки,
// откатываясь на InvoiceOrderDateDesc для неизвестных значений.
func (f InvoiceFilter) NormalizedOrder() string {
	switch strings.ToLower(strings.TrimSpace(f.OrderBy)) {
	case InvoiceOrderDateAsc:
		return InvoiceOrderDateAsc
	case InvoiceOrderAmountDesc:
		return InvoiceOrderAmountDesc
	case InvoiceOrderAmountAsc:
		return InvoiceOrderAmountAsc
	default:
		return InvoiceOrderDateDesc
	}
}
