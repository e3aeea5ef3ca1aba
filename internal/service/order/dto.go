package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/store/internal/domain"
)

// InvoiceItemInput — запрошенная позиция заказа.
type InvoiceItemInput struct {
	ProductID int64
	Quantity  int
}

// CreateInvoiceInput — входные данные оформления счёта.
type CreateInvoiceInput struct {
	UserID   int64
	Language string
	Items    []InvoiceItemInput
}

// InvoiceLineView — позиция счёта: неизменяемый снимок товара на момент покупки.
type InvoiceLineView struct {
	ProductID   int64
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
	LineTotal   decimal.Decimal
}

// InvoiceView — карточка счёта для владельца.
type InvoiceView struct {
	ID          int64
	UserID      int64
	CreatedAt   time.Time
	TotalAmount decimal.Decimal
	Lines       []InvoiceLineView
}

// InvoiceListItem — строка списка счетов пользователя с агрегатами по позициям.
type InvoiceListItem struct {
	ID            int64
	CreatedAt     time.Time
	TotalAmount   decimal.Decimal
	TotalProducts int
	TotalQuantity int
}

// InvoiceAdminListItem — административная строка списка с данными владельца.
type InvoiceAdminListItem struct {
	ID            int64
	UserID        int64
	UserEmail     string
	UserFullName  string
	CreatedAt     time.Time
	TotalAmount   decimal.Decimal
	TotalProducts int
	TotalQuantity int
}

func toInvoiceView(invoice domain.Invoice) InvoiceView {
	lines := make([]InvoiceLineView, 0, len(invoice.Details))
	for _, d := range invoice.Details {
		lines = append(lines, InvoiceLineView{
			ProductID:   d.ProductID,
			Name:        d.ProductName,
			Description: d.ProductDescription,
			UnitPrice:   d.UnitPrice,
			Quantity:    d.Quantity,
			LineTotal:   d.LineTotal,
		})
	}
	return InvoiceView{
		ID:          invoice.ID,
		UserID:      invoice.UserID,
		CreatedAt:   invoice.CreatedAt,
		TotalAmount: invoice.TotalAmount,
		Lines:       lines,
	}
}

func toListItem(invoice domain.Invoice) InvoiceListItem {
	return InvoiceListItem{
		ID:            invoice.ID,
		CreatedAt:     invoice.CreatedAt,
		TotalAmount:   invoice.TotalAmount,
		TotalProducts: len(invoice.Details),
		TotalQuantity: invoice.TotalQuantity(),
	}
}

func toAdminListItem(invoice domain.Invoice, owner domain.User) InvoiceAdminListItem {
	return InvoiceAdminListItem{
		ID:            invoice.ID,
		UserID:        invoice.UserID,
		UserEmail:     owner.Email,
		UserFullName:  owner.FullName,
		CreatedAt:     invoice.CreatedAt,
		TotalAmount:   invoice.TotalAmount,
		TotalProducts: len(invoice.Details),
		TotalQuantity: invoice.TotalQuantity(),
	}
}
