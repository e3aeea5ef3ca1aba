package domain

import (
	"context"

	"github.com/vladislavdragonenkov/store/internal/pagination"
)

// ProductReader — read-only доступ к каталогу. Мягко удалённые товары
// исключаются всеми операциями чтения; переводы загружаются всегда.
type ProductReader interface {
	// GetPaged возвращает страницу неудалённых товаров, упорядоченную по id по убыванию.
	GetPaged(ctx context.Context, filter ProductFilter) (pagination.Page[Product], error)
	// GetByID возвращает товар с переводами или ErrProductNotFound.
	GetByID(ctx context.Context, id int64) (Product, error)
}

// ProductRepository дополняет чтение мутациями. Мутации не фиксируются сами —
// они входят в объемлющую транзакционную границу (UnitOfWork).
type ProductRepository interface {
	ProductReader
	// Add сохраняет новый товар и проставляет ID товару и переводам.
	Add(ctx context.Context, product *Product) error
	// Update перезаписывает цену/остаток и сверяет набор переводов по ID:
	// существующие строки обновляются на месте, новые вставляются, отсутствующие удаляются.
	Update(ctx context.Context, product *Product) error
	// SoftDelete выставляет флаг удаления, не трогая остальную строку.
	SoftDelete(ctx context.Context, id int64) error
	// DecrementStock выполняет условное списание остатка
	// ("stock = stock - qty where stock >= qty") и возвращает
	// ErrInsufficientStock, если остатка не хватает.
	DecrementStock(ctx context.Context, id int64, quantity int) error
}

// InvoiceReader — read-only доступ к счетам, с опциональной привязкой к пользователю.
type InvoiceReader interface {
	// GetByID возвращает счёт с позициями или ErrInvoiceNotFound.
	GetByID(ctx context.Context, id int64) (Invoice, error)
	// GetByIDForUser дополнительно проверяет владельца.
	GetByIDForUser(ctx context.Context, id, userID int64) (Invoice, error)
	// GetPaged возвращает страницу счетов по фильтру (без привязки к пользователю).
	GetPaged(ctx context.Context, filter InvoiceFilter) (pagination.Page[Invoice], error)
	// GetPagedForUser ограничивает выборку одним владельцем.
	GetPagedForUser(ctx context.Context, userID int64, filter InvoiceFilter) (pagination.Page[Invoice], error)
}

// InvoiceRepository дополняет чтение добавлением нового счёта.
type InvoiceRepository interface {
	InvoiceReader
	// Add сохраняет счёт с позициями и проставляет ID. Счета неизменяемы —
	// операций обновления или удаления не существует.
	Add(ctx context.Context, invoice *Invoice) error
}

// OutboxEnqueuer ставит событие в transactional outbox в рамках текущей границы.
type OutboxEnqueuer interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
}

// UnitOfWork — транзакционная граница: все мутации, сделанные через его
// репозитории, фиксируются или откатываются совместно.
type UnitOfWork interface {
	Products() ProductRepository
	Invoices() InvoiceRepository
	Outbox() OutboxEnqueuer
	// Complete атомарно применяет все накопленные мутации.
	Complete(ctx context.Context) error
	// Rollback отбрасывает накопленные мутации. Безопасен после Complete.
	Rollback() error
}

// Store открывает транзакционные границы и даёт read-only доступ вне транзакции.
type Store interface {
	Products() ProductReader
	Invoices() InvoiceReader
	Begin(ctx context.Context) (UnitOfWork, error)
}
