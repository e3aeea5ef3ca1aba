package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/store/internal/domain"
	"github.com/vladislavdragonenkov/store/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/store/internal/metrics"
	"github.com/vladislavdragonenkov/store/internal/pagination"
)

// Тексты сообщений — контракт публичного API, не менять без версии.
const (
	msgItemsRequired     = "At least one item is required."
	msgNoValidItems      = "No valid items to create an invoice."
	msgUserLocked        = "User account is locked."
	fmtProductNotFound   = "Product with id %d was not found."
	fmtQuantityInvalid   = "Quantity for product %d must be at least 1."
	fmtInsufficientStock = "Not enough stock for product %d. Available: %d, requested: %d."
	fmtFallbackName      = "Product #%d"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// Service описывает оформление и чтение счетов.
type Service interface {
	// CreateInvoice выполняет всё-или-ничего оформление заказа:
	// либо счёт и все списания остатков фиксируются одной транзакцией,
	// либо возвращается полный список нарушений и ничего не меняется.
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (InvoiceView, error)

	GetUserInvoice(ctx context.Context, userID, invoiceID int64) (InvoiceView, error)
	ListUserInvoices(ctx context.Context, userID int64, filter domain.InvoiceFilter) (pagination.Page[InvoiceListItem], error)

	GetInvoice(ctx context.Context, invoiceID int64) (InvoiceView, error)
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) (pagination.Page[InvoiceAdminListItem], error)
}

// service реализует оформление счетов поверх domain.Store.
type service struct {
	store   domain.Store
	users   domain.UserDirectory
	logger  *log.Entry
	metrics *metrics.StoreMetrics
	now     func() time.Time
}

// NewService создаёт рабочий экземпляр сервиса заказов.
func NewService(store domain.Store, users domain.UserDirectory, logger *log.Entry) Service {
	if logger == nil {
		logger = log.New().WithField("component", "order")
	}
	return &service{
		store:   store,
		users:   users,
		logger:  logger,
		metrics: metrics.NewStoreMetrics(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(store domain.Store, users domain.UserDirectory, logger *log.Entry) Service {
	if logger == nil {
		logger = log.New().WithField("component", "order")
	}
	return &service{
		store:  store,
		users:  users,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (InvoiceView, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordInvoiceDuration(time.Since(start))
		}
	}()

	if len(input.Items) == 0 {
		s.reject("validation")
		return InvoiceView{}, domain.NewValidationError(msgItemsRequired)
	}

	user, err := s.users.FindByID(input.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.reject("user")
			return InvoiceView{}, domain.ErrUserNotFound
		}
		return InvoiceView{}, fmt.Errorf("find user %d: %w", input.UserID, err)
	}
	if user.Locked {
		s.reject("user")
		return InvoiceView{}, domain.NewValidationError(msgUserLocked)
	}

	language := domain.NormalizeLanguage(input.Language)

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return InvoiceView{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = uow.Rollback()
	}()

	// Каждая строка валидируется независимо, ошибки копятся:
	// вызывающий видит полный список проблем за один обмен.
	var (
		messages []string
		details  []domain.InvoiceDetail
		total    = decimal.Zero
	)
	for _, item := range input.Items {
		product, err := uow.Products().GetByID(ctx, item.ProductID)
		if err != nil {
			if domain.IsNotFound(err) {
				messages = append(messages, fmt.Sprintf(fmtProductNotFound, item.ProductID))
				continue
			}
			return InvoiceView{}, fmt.Errorf("get product %d: %w", item.ProductID, err)
		}
		if item.Quantity < 1 {
			messages = append(messages, fmt.Sprintf(fmtQuantityInvalid, item.ProductID))
			continue
		}
		if product.StockQuantity < item.Quantity {
			messages = append(messages, fmt.Sprintf(fmtInsufficientStock,
				item.ProductID, product.StockQuantity, item.Quantity))
			continue
		}

		if err := uow.Products().DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				if s.metrics != nil {
					s.metrics.RecordStockConflict()
				}
				messages = append(messages, fmt.Sprintf(fmtInsufficientStock,
					item.ProductID, product.StockQuantity, item.Quantity))
				continue
			}
			return InvoiceView{}, fmt.Errorf("decrement stock of product %d: %w", item.ProductID, err)
		}

		name := fmt.Sprintf(fmtFallbackName, product.ID)
		description := ""
		if resolved := domain.ResolveTranslation(product.Translations, language); resolved != nil {
			name = resolved.Name
			description = resolved.Description
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		details = append(details, domain.InvoiceDetail{
			ProductID:          product.ID,
			ProductName:        name,
			ProductDescription: description,
			UnitPrice:          product.Price,
			Quantity:           item.Quantity,
			LineTotal:          lineTotal,
		})
		total = total.Add(lineTotal)
	}

	// Любая ошибка строки отменяет операцию целиком: ни счёта, ни списаний.
	if len(messages) > 0 {
		s.reject("validation")
		return InvoiceView{}, domain.NewValidationError(messages...)
	}
	if len(details) == 0 {
		s.reject("validation")
		return InvoiceView{}, domain.NewValidationError(msgNoValidItems)
	}

	invoice := domain.Invoice{
		UserID:      input.UserID,
		CreatedAt:   s.now(),
		TotalAmount: total,
		Details:     details,
	}
	if err := uow.Invoices().Add(ctx, &invoice); err != nil {
		return InvoiceView{}, fmt.Errorf("add invoice: %w", err)
	}

	if err := s.enqueueCreatedEvent(uow, invoice); err != nil {
		return InvoiceView{}, err
	}

	if err := uow.Complete(ctx); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			// Конкурирующий заказ успел забрать остаток между проверкой и фиксацией.
			if s.metrics != nil {
				s.metrics.RecordStockConflict()
			}
			s.reject("stock")
			return InvoiceView{}, domain.NewValidationError(
				"Not enough stock: a concurrent order consumed the remaining quantity.")
		}
		return InvoiceView{}, fmt.Errorf("complete: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceCreated()
	}
	s.logger.WithFields(log.Fields{
		"invoice_id": invoice.ID,
		"user_id":    invoice.UserID,
		"total":      invoice.TotalAmount.String(),
		"lines":      len(invoice.Details),
	}).Info("invoice created")

	return toInvoiceView(invoice), nil
}

// enqueueCreatedEvent ставит invoice.created в outbox той же транзакцией, что и счёт.
func (s *service) enqueueCreatedEvent(uow domain.UnitOfWork, invoice domain.Invoice) error {
	event := kafka.NewInvoiceCreatedEvent(
		invoice.ID,
		invoice.UserID,
		invoice.TotalAmount,
		len(invoice.Details),
		invoice.TotalQuantity(),
		invoice.CreatedAt,
	)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal invoice.created event: %w", err)
	}

	_, err = uow.Outbox().Enqueue(domain.OutboxMessage{
		AggregateType: "invoice",
		AggregateID:   strconv.FormatInt(invoice.ID, 10),
		EventType:     string(kafka.EventTypeInvoiceCreated),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("enqueue invoice.created event: %w", err)
	}
	return nil
}

func (s *service) GetUserInvoice(ctx context.Context, userID, invoiceID int64) (InvoiceView, error) {
	invoice, err := s.store.Invoices().GetByIDForUser(ctx, invoiceID, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return InvoiceView{}, domain.ErrInvoiceNotFound
		}
		return InvoiceView{}, fmt.Errorf("get invoice %d: %w", invoiceID, err)
	}
	return toInvoiceView(invoice), nil
}

func (s *service) ListUserInvoices(ctx context.Context, userID int64, filter domain.InvoiceFilter) (pagination.Page[InvoiceListItem], error) {
	start := time.Now()
	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize)

	page, err := s.store.Invoices().GetPagedForUser(ctx, userID, filter)
	if err != nil {
		return pagination.Page[InvoiceListItem]{}, fmt.Errorf("list user invoices: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordQueryDuration("invoice_list_user", time.Since(start))
	}
	return pagination.Map(page, toListItem), nil
}

func (s *service) GetInvoice(ctx context.Context, invoiceID int64) (InvoiceView, error) {
	invoice, err := s.store.Invoices().GetByID(ctx, invoiceID)
	if err != nil {
		if domain.IsNotFound(err) {
			return InvoiceView{}, domain.ErrInvoiceNotFound
		}
		return InvoiceView{}, fmt.Errorf("get invoice %d: %w", invoiceID, err)
	}
	return toInvoiceView(invoice), nil
}

// ListInvoices возвращает административный список с данными владельцев.
// Владелец разрешается по строке; неизвестный пользователь оставляет поля пустыми.
func (s *service) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) (pagination.Page[InvoiceAdminListItem], error) {
	start := time.Now()
	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize)

	page, err := s.store.Invoices().GetPaged(ctx, filter)
	if err != nil {
		return pagination.Page[InvoiceAdminListItem]{}, fmt.Errorf("list invoices: %w", err)
	}

	items := make([]InvoiceAdminListItem, 0, len(page.Items))
	for _, invoice := range page.Items {
		owner, err := s.users.FindByID(invoice.UserID)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return pagination.Page[InvoiceAdminListItem]{}, fmt.Errorf("find user %d: %w", invoice.UserID, err)
		}
		items = append(items, toAdminListItem(invoice, owner))
	}

	if s.metrics != nil {
		s.metrics.RecordQueryDuration("invoice_list_admin", time.Since(start))
	}
	return pagination.Page[InvoiceAdminListItem]{
		Items:       items,
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
		TotalCount:  page.TotalCount,
		TotalPages:  page.TotalPages,
	}, nil
}

func (s *service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.RecordInvoiceRejected(reason)
	}
}

// clampPage приводит параметры страницы к допустимым значениям сервиса.
func clampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

var _ Service = (*service)(nil)
