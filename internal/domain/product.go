package domain

import "github.com/shopspring/decimal"

// Translation — пара (язык, название/описание), принадлежащая одному товару.
// Язык хранится нормализованным (trim + lowercase), уникален в пределах товара.
type Translation struct {
	// ID сохраняет идентичность строки при reconcile-обновлениях набора переводов.
	ID        int64
	ProductID int64
	Language  string
	Name      string
	// Description опционально; пустая строка означает отсутствие описания.
	Description string
}

// Product агрегирует цену, остаток и набор переводов товара.
type Product struct {
	ID            int64
	Price         decimal.Decimal
	StockQuantity int
	// IsDeleted — мягкое удаление: строка остаётся ради исторических позиций счетов.
	IsDeleted    bool
	Translations []Translation
}

// IsInStock — производный признак наличия: остаток строго больше нуля.
func (p *Product) IsInStock() bool {
	return p.StockQuantity > 0
}

// Clone возвращает глубокую копию товара, чтобы избежать мутаций извне.
func (p *Product) Clone() Product {
	clone := *p
	clone.Translations = make([]Translation, len(p.Translations))
	copy(clone.Translations, p.Translations)
	return clone
}
