package kafka

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType определяет тип события
type EventType string

const (
	// Invoice события
	EventTypeInvoiceCreated EventType = "invoice.created"

	// Catalog события
	EventTypeProductCreated EventType = "product.created"
	EventTypeProductUpdated EventType = "product.updated"
	EventTypeProductRemoved EventType = "product.removed"
)

// Topics для Kafka
const (
	TopicInvoiceEvents   = "store.invoice.events"
	TopicCatalogEvents   = "store.catalog.events"
	TopicDeadLetterQueue = "store.dlq" // Dead Letter Queue для failed messages
)

// InvoiceCreatedEvent представляет событие успешно оформленного счёта.
type InvoiceCreatedEvent struct {
	EventType     EventType       `json:"event_type"`
	InvoiceID     int64           `json:"invoice_id"`
	UserID        int64           `json:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalProducts int             `json:"total_products"`
	TotalQuantity int             `json:"total_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewInvoiceCreatedEvent создает событие оформленного счёта.
func NewInvoiceCreatedEvent(invoiceID, userID int64, totalAmount decimal.Decimal, totalProducts, totalQuantity int, createdAt time.Time) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		EventType:     EventTypeInvoiceCreated,
		InvoiceID:     invoiceID,
		UserID:        userID,
		TotalAmount:   totalAmount,
		TotalProducts: totalProducts,
		TotalQuantity: totalQuantity,
		CreatedAt:     createdAt,
	}
}

// ProductEvent описывает изменение товара в каталоге.
// Для product.removed цена и остаток нулевые: товар уже скрыт.
type ProductEvent struct {
	EventType     EventType       `json:"event_type"`
	ProductID     int64           `json:"product_id"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewProductEvent создает событие изменения каталога.
func NewProductEvent(eventType EventType, productID int64, price decimal.Decimal, stockQuantity int, occurredAt time.Time) *ProductEvent {
	return &ProductEvent{
		EventType:     eventType,
		ProductID:     productID,
		Price:         price,
		StockQuantity: stockQuantity,
		OccurredAt:    occurredAt,
	}
}
