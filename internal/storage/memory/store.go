package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/store/internal/domain"
)

// Store — in-memory реализация domain.Store для локальной разработки и тестов.
// Повторяет транзакционную семантику PostgreSQL-бэкенда: мутации копятся
// в UnitOfWork и применяются атомарно под общим замком.
type Store struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
	invoices map[int64]domain.Invoice
	outbox   *outboxRepositoryInMemory

	productSeq     int64
	translationSeq int64
	invoiceSeq     int64
	detailSeq      int64
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		products: make(map[int64]domain.Product),
		invoices: make(map[int64]domain.Invoice),
		outbox:   NewOutboxRepository(),
	}
}

// Products возвращает read-only доступ к каталогу вне транзакции.
func (s *Store) Products() domain.ProductReader {
	return &productReader{store: s}
}

// Invoices возвращает read-only доступ к счетам вне транзакции.
func (s *Store) Invoices() domain.InvoiceReader {
	return &invoiceReader{store: s}
}

// Outbox возвращает репозиторий outbox для фонового публикатора.
func (s *Store) Outbox() domain.OutboxRepository {
	return s.outbox
}

// Begin открывает новую транзакционную границу.
func (s *Store) Begin(_ context.Context) (domain.UnitOfWork, error) {
	return &unitOfWork{
		store:      s,
		decrements: make(map[int64]int),
	}, nil
}

// nextProductID выделяет идентификатор товара. Идентификаторы не переиспользуются
// после отката, как и у последовательностей БД.
func (s *Store) nextProductID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productSeq++
	return s.productSeq
}

func (s *Store) nextTranslationID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translationSeq++
	return s.translationSeq
}

func (s *Store) nextInvoiceID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoiceSeq++
	return s.invoiceSeq
}

func (s *Store) nextDetailID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailSeq++
	return s.detailSeq
}

var _ domain.Store = (*Store)(nil)
