package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/store/internal/domain"
	"github.com/vladislavdragonenkov/store/internal/pagination"
)

// unitOfWork копит мутации и применяет их атомарно под замком хранилища.
// До Complete стейджинг не виден читателям.
type unitOfWork struct {
	store *Store

	mu       sync.Mutex
	finished bool

	addedProducts   []domain.Product
	updatedProducts []domain.Product
	softDeleted     []int64
	// decrements накапливает списания остатка по товару; повторные строки
	// одного товара в одном заказе складываются.
	decrements    map[int64]int
	addedInvoices []domain.Invoice
	outboxStaged  []domain.OutboxMessage
}

func (u *unitOfWork) Products() domain.ProductRepository {
	return &uowProductRepository{uow: u}
}

func (u *unitOfWork) Invoices() domain.InvoiceRepository {
	return &uowInvoiceRepository{uow: u}
}

func (u *unitOfWork) Outbox() domain.OutboxEnqueuer {
	return &uowOutbox{uow: u}
}

// Complete повторно проверяет условные списания под эксклюзивным замком
// и применяет все накопленные мутации. Частичное применение невозможно.
func (u *unitOfWork) Complete(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.finished {
		return nil
	}

	s := u.store
	s.mu.Lock()

	// Страховка от гонки: между стейджингом и фиксацией остаток мог уйти
	// конкурирующему заказу.
	for id, qty := range u.decrements {
		product, ok := s.products[id]
		if !ok || product.IsDeleted {
			s.mu.Unlock()
			return domain.ErrProductNotFound
		}
		if product.StockQuantity < qty {
			s.mu.Unlock()
			return domain.ErrInsufficientStock
		}
	}

	for id, qty := range u.decrements {
		product := s.products[id]
		product.StockQuantity -= qty
		s.products[id] = product
	}
	for _, product := range u.addedProducts {
		s.products[product.ID] = product.Clone()
	}
	for _, product := range u.updatedProducts {
		s.products[product.ID] = product.Clone()
	}
	for _, id := range u.softDeleted {
		if product, ok := s.products[id]; ok {
			product.IsDeleted = true
			s.products[id] = product
		}
	}
	for _, invoice := range u.addedInvoices {
		s.invoices[invoice.ID] = invoice.Clone()
	}
	s.mu.Unlock()

	for _, msg := range u.outboxStaged {
		if _, err := s.outbox.Enqueue(msg); err != nil {
			return err
		}
	}

	u.finished = true
	return nil
}

// Rollback отбрасывает стейджинг. Безопасен после Complete и при повторных вызовах.
func (u *unitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.finished {
		return nil
	}

	u.addedProducts = nil
	u.updatedProducts = nil
	u.softDeleted = nil
	u.decrements = make(map[int64]int)
	u.addedInvoices = nil
	u.outboxStaged = nil
	u.finished = true
	return nil
}

// uowProductRepository — транзакционное представление каталога.
type uowProductRepository struct {
	uow *unitOfWork
}

func (r *uowProductRepository) GetPaged(ctx context.Context, filter domain.ProductFilter) (pagination.Page[domain.Product], error) {
	return (&productReader{store: r.uow.store}).GetPaged(ctx, filter)
}

// GetByID отражает списания, уже сделанные в этой же границе:
// повторная строка того же товара в одном заказе видит уменьшенный остаток.
func (r *uowProductRepository) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	product, err := (&productReader{store: r.uow.store}).GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	r.uow.mu.Lock()
	product.StockQuantity -= r.uow.decrements[id]
	r.uow.mu.Unlock()

	return product, nil
}

// Add выделяет идентификаторы сразу (как последовательности БД) и ставит товар в стейджинг.
func (r *uowProductRepository) Add(_ context.Context, product *domain.Product) error {
	product.ID = r.uow.store.nextProductID()
	for i := range product.Translations {
		product.Translations[i].ID = r.uow.store.nextTranslationID()
		product.Translations[i].ProductID = product.ID
	}

	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	r.uow.addedProducts = append(r.uow.addedProducts, product.Clone())
	return nil
}

// Update ставит в стейджинг перезапись товара; новым переводам (ID==0)
// выделяются идентификаторы, существующие сохраняют свои.
func (r *uowProductRepository) Update(_ context.Context, product *domain.Product) error {
	for i := range product.Translations {
		if product.Translations[i].ID == 0 {
			product.Translations[i].ID = r.uow.store.nextTranslationID()
		}
		product.Translations[i].ProductID = product.ID
	}

	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	r.uow.updatedProducts = append(r.uow.updatedProducts, product.Clone())
	return nil
}

func (r *uowProductRepository) SoftDelete(_ context.Context, id int64) error {
	r.uow.store.mu.RLock()
	product, ok := r.uow.store.products[id]
	r.uow.store.mu.RUnlock()
	if !ok || product.IsDeleted {
		return domain.ErrProductNotFound
	}

	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	r.uow.softDeleted = append(r.uow.softDeleted, id)
	return nil
}

// DecrementStock проверяет остаток против зафиксированного состояния минус
// уже накопленные списания этой границы и ставит списание в стейджинг.
func (r *uowProductRepository) DecrementStock(_ context.Context, id int64, quantity int) error {
	r.uow.store.mu.RLock()
	product, ok := r.uow.store.products[id]
	r.uow.store.mu.RUnlock()
	if !ok || product.IsDeleted {
		return domain.ErrProductNotFound
	}

	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	if product.StockQuantity-r.uow.decrements[id] < quantity {
		return domain.ErrInsufficientStock
	}
	r.uow.decrements[id] += quantity
	return nil
}

// uowInvoiceRepository — транзакционное представление счетов.
type uowInvoiceRepository struct {
	uow *unitOfWork
}

func (r *uowInvoiceRepository) GetByID(ctx context.Context, id int64) (domain.Invoice, error) {
	return (&invoiceReader{store: r.uow.store}).GetByID(ctx, id)
}

func (r *uowInvoiceRepository) GetByIDForUser(ctx context.Context, id, userID int64) (domain.Invoice, error) {
	return (&invoiceReader{store: r.uow.store}).GetByIDForUser(ctx, id, userID)
}

func (r *uowInvoiceRepository) GetPaged(ctx context.Context, filter domain.InvoiceFilter) (pagination.Page[domain.Invoice], error) {
	return (&invoiceReader{store: r.uow.store}).GetPaged(ctx, filter)
}

func (r *uowInvoiceRepository) GetPagedForUser(ctx context.Context, userID int64, filter domain.InvoiceFilter) (pagination.Page[domain.Invoice], error) {
	return (&invoiceReader{store: r.uow.store}).GetPagedForUser(ctx, userID, filter)
}

// Add выделяет идентификаторы счёта и позиций сразу, чтобы payload событий
// мог ссылаться на счёт ещё до фиксации.
func (r *uowInvoiceRepository) Add(_ context.Context, invoice *domain.Invoice) error {
	invoice.ID = r.uow.store.nextInvoiceID()
	for i := range invoice.Details {
		invoice.Details[i].ID = r.uow.store.nextDetailID()
		invoice.Details[i].InvoiceID = invoice.ID
	}

	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	r.uow.addedInvoices = append(r.uow.addedInvoices, invoice.Clone())
	return nil
}

// uowOutbox ставит события в стейджинг границы; в outbox они попадают
// только при успешном Complete.
type uowOutbox struct {
	uow *unitOfWork
}

func (o *uowOutbox) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	o.uow.mu.Lock()
	defer o.uow.mu.Unlock()
	o.uow.outboxStaged = append(o.uow.outboxStaged, msg)
	return msg, nil
}

var (
	_ domain.UnitOfWork        = (*unitOfWork)(nil)
	_ domain.ProductRepository = (*uowProductRepository)(nil)
	_ domain.InvoiceRepository = (*uowInvoiceRepository)(nil)
	_ domain.OutboxEnqueuer    = (*uowOutbox)(nil)
)
