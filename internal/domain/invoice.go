package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceDetail — неизменяемый снимок позиции на момент оформления.
// Название, описание и цена фиксируются и не пересматриваются при изменении товара.
type InvoiceDetail struct {
	ID        int64
	InvoiceID int64
	// ProductID — слабая ссылка для отображения; повторно не разрешается.
	ProductID          int64
	ProductName        string
	ProductDescription string
	UnitPrice          decimal.Decimal
	Quantity           int
	LineTotal          decimal.Decimal
}

// Invoice — неизменяемая запись о завершённой покупке с позициями.
// После создания операций обновления или удаления не существует.
type Invoice struct {
	ID          int64
	UserID      int64
	CreatedAt   time.Time
	TotalAmount decimal.Decimal
	Details     []InvoiceDetail
}

// TotalQuantity возвращает суммарное количество единиц по всем позициям.
func (i *Invoice) TotalQuantity() int {
	var total int
	for _, d := range i.Details {
		total += d.Quantity
	}
	return total
}

// ValidateInvariants проверяет внутреннюю согласованность счёта и возвращает список замечаний.
func (i *Invoice) ValidateInvariants() []error {
	var errs []error

	if i.UserID <= 0 {
		errs = append(errs, ErrUserRequired)
	}
	if len(i.Details) == 0 {
		errs = append(errs, ErrDetailsRequired)
	}

	// Сверяем итог счёта с суммой позиций: unitPrice * quantity.
	calc := decimal.Zero
	for _, d := range i.Details {
		if d.Quantity <= 0 {
			errs = append(errs, ErrDetailQuantityInvalid)
		}
		if d.UnitPrice.IsNegative() {
			errs = append(errs, ErrDetailPriceInvalid)
		}
		if !d.LineTotal.Equal(d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))) {
			errs = append(errs, ErrLineTotalMismatch)
		}
		calc = calc.Add(d.LineTotal)
	}
	if !calc.Equal(i.TotalAmount) {
		errs = append(errs, ErrTotalAmountMismatch)
	}

	return errs
}

// Clone возвращает глубокую копию счёта.
func (i *Invoice) Clone() Invoice {
	clone := *i
	clone.Details = make([]InvoiceDetail, len(i.Details))
	copy(clone.Details, i.Details)
	return clone
}
