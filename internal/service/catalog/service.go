package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/store/internal/domain"
	"github.com/vladislavdragonenkov/store/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/store/internal/metrics"
	"github.com/vladislavdragonenkov/store/internal/pagination"
)

// Тексты сообщений валидации — контракт публичного API, не менять без версии.
const (
	msgTranslationRequired = "At least one translation is required."
	msgDuplicateLanguage   = "Duplicate language codes are not allowed in translations."
	msgProductNotFound     = "Product not found."
	msgPriceTooLow         = "Price must be at least 0.01."
	msgStockNegative       = "Stock quantity cannot be negative."
	msgTranslationName     = "Translation name is required."
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

var minPrice = decimal.RequireFromString("0.01")

// Service описывает операции каталога товаров.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (ProductAdminDetail, error)
	Update(ctx context.Context, input UpdateProductInput) (ProductAdminDetail, error)
	Remove(ctx context.Context, id int64) error

	ListPublic(ctx context.Context, language string, filter domain.ProductFilter) (pagination.Page[ProductListItem], error)
	GetPublicByID(ctx context.Context, id int64, language string) (ProductPublicDetail, error)
	ListAdmin(ctx context.Context, filter domain.ProductFilter) (pagination.Page[ProductAdminDetail], error)
	GetAdminByID(ctx context.Context, id int64) (ProductAdminDetail, error)
}

// service реализует каталог поверх domain.Store.
type service struct {
	store   domain.Store
	logger  *log.Entry
	metrics *metrics.StoreMetrics
}

// NewService создаёт рабочий экземпляр сервиса каталога.
func NewService(store domain.Store, logger *log.Entry) Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &service{
		store:   store,
		logger:  logger,
		metrics: metrics.NewStoreMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(store domain.Store, logger *log.Entry) Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &service{
		store:  store,
		logger: logger,
	}
}

// Create валидирует входные данные и сохраняет товар с переводами.
func (s *service) Create(ctx context.Context, input CreateProductInput) (ProductAdminDetail, error) {
	if err := validateProductInput(input.Price, input.StockQuantity, input.Translations); err != nil {
		return ProductAdminDetail{}, err
	}

	product := domain.Product{
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		Translations:  normalizeTranslations(input.Translations),
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return ProductAdminDetail{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = uow.Rollback()
	}()

	if err := uow.Products().Add(ctx, &product); err != nil {
		return ProductAdminDetail{}, fmt.Errorf("add product: %w", err)
	}
	if err := s.enqueueProductEvent(uow, kafka.EventTypeProductCreated, product); err != nil {
		return ProductAdminDetail{}, err
	}
	if err := uow.Complete(ctx); err != nil {
		return ProductAdminDetail{}, fmt.Errorf("complete: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordProductCreated()
	}
	s.logger.WithField("product_id", product.ID).Info("product created")
	return toAdminDetail(product), nil
}

// Update перезаписывает цену/остаток и сверяет набор переводов по коду
// языка: совпавшие языки обновляются на месте и сохраняют идентичность
// строк, новые языки вставляются, отсутствующие во входном наборе удаляются.
func (s *service) Update(ctx context.Context, input UpdateProductInput) (ProductAdminDetail, error) {
	if err := validateProductInput(input.Price, input.StockQuantity, input.Translations); err != nil {
		return ProductAdminDetail{}, err
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return ProductAdminDetail{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = uow.Rollback()
	}()

	existing, err := uow.Products().GetByID(ctx, input.ID)
	if err != nil {
		if domain.IsNotFound(err) {
			return ProductAdminDetail{}, domain.NewValidationError(msgProductNotFound)
		}
		return ProductAdminDetail{}, fmt.Errorf("get product %d: %w", input.ID, err)
	}

	product := existing.Clone()
	product.Price = input.Price
	product.StockQuantity = input.StockQuantity
	product.Translations = reconcileTranslations(existing.Translations, input.Translations)
	for i := range product.Translations {
		product.Translations[i].ProductID = product.ID
	}

	if err := uow.Products().Update(ctx, &product); err != nil {
		return ProductAdminDetail{}, fmt.Errorf("update product %d: %w", input.ID, err)
	}
	if err := s.enqueueProductEvent(uow, kafka.EventTypeProductUpdated, product); err != nil {
		return ProductAdminDetail{}, err
	}
	if err := uow.Complete(ctx); err != nil {
		return ProductAdminDetail{}, fmt.Errorf("complete: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordProductUpdated()
	}
	s.logger.WithField("product_id", product.ID).Info("product updated")
	return toAdminDetail(product), nil
}

// Remove мягко удаляет товар: он исчезает из каталога,
// но исторические позиции счетов остаются валидными.
func (s *service) Remove(ctx context.Context, id int64) error {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = uow.Rollback()
	}()

	if err := uow.Products().SoftDelete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return domain.NewValidationError(msgProductNotFound)
		}
		return fmt.Errorf("soft delete product %d: %w", id, err)
	}
	if err := s.enqueueProductEvent(uow, kafka.EventTypeProductRemoved, domain.Product{ID: id}); err != nil {
		return err
	}
	if err := uow.Complete(ctx); err != nil {
		return fmt.Errorf("complete: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordProductRemoved()
	}
	s.logger.WithField("product_id", id).Info("product removed")
	return nil
}

// ListPublic возвращает страницу каталога с переводом, разрешённым под язык запроса.
func (s *service) ListPublic(ctx context.Context, language string, filter domain.ProductFilter) (pagination.Page[ProductListItem], error) {
	start := time.Now()
	language = domain.NormalizeLanguage(language)
	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize)

	page, err := s.store.Products().GetPaged(ctx, filter)
	if err != nil {
		return pagination.Page[ProductListItem]{}, fmt.Errorf("list products: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordQueryDuration("catalog_list", time.Since(start))
	}
	return pagination.Map(page, func(p domain.Product) ProductListItem {
		return toListItem(p, language)
	}), nil
}

// GetPublicByID возвращает публичную карточку товара.
func (s *service) GetPublicByID(ctx context.Context, id int64, language string) (ProductPublicDetail, error) {
	language = domain.NormalizeLanguage(language)

	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return ProductPublicDetail{}, domain.ErrProductNotFound
		}
		return ProductPublicDetail{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return toPublicDetail(product, language), nil
}

// ListAdmin возвращает страницу товаров с полными наборами переводов.
func (s *service) ListAdmin(ctx context.Context, filter domain.ProductFilter) (pagination.Page[ProductAdminDetail], error) {
	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize)

	page, err := s.store.Products().GetPaged(ctx, filter)
	if err != nil {
		return pagination.Page[ProductAdminDetail]{}, fmt.Errorf("list products: %w", err)
	}
	return pagination.Map(page, toAdminDetail), nil
}

// GetAdminByID возвращает административную карточку товара.
func (s *service) GetAdminByID(ctx context.Context, id int64) (ProductAdminDetail, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return ProductAdminDetail{}, domain.ErrProductNotFound
		}
		return ProductAdminDetail{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return toAdminDetail(product), nil
}

// enqueueProductEvent ставит событие каталога в outbox той же транзакцией,
// что и мутация товара.
func (s *service) enqueueProductEvent(uow domain.UnitOfWork, eventType kafka.EventType, product domain.Product) error {
	event := kafka.NewProductEvent(eventType, product.ID, product.Price, product.StockQuantity, time.Now().UTC())
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	_, err = uow.Outbox().Enqueue(domain.OutboxMessage{
		AggregateType: "product",
		AggregateID:   strconv.FormatInt(product.ID, 10),
		EventType:     string(eventType),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("enqueue %s event: %w", eventType, err)
	}
	return nil
}

// validateProductInput собирает все нарушения бизнес-правил в один ValidationError.
func validateProductInput(price decimal.Decimal, stock int, translations []TranslationInput) error {
	var messages []string

	if price.LessThan(minPrice) {
		messages = append(messages, msgPriceTooLow)
	}
	if stock < 0 {
		messages = append(messages, msgStockNegative)
	}
	if len(translations) == 0 {
		messages = append(messages, msgTranslationRequired)
	}

	seen := make(map[string]struct{}, len(translations))
	duplicate := false
	for _, tr := range translations {
		if strings.TrimSpace(tr.Name) == "" {
			messages = append(messages, msgTranslationName)
		}
		code := domain.NormalizeLanguage(tr.Language)
		if _, ok := seen[code]; ok {
			duplicate = true
		}
		seen[code] = struct{}{}
	}
	if duplicate {
		messages = append(messages, msgDuplicateLanguage)
	}

	if len(messages) > 0 {
		return domain.NewValidationError(messages...)
	}
	return nil
}

func normalizeTranslations(inputs []TranslationInput) []domain.Translation {
	translations := make([]domain.Translation, 0, len(inputs))
	for _, in := range inputs {
		translations = append(translations, domain.Translation{
			Language:    domain.NormalizeLanguage(in.Language),
			Name:        strings.TrimSpace(in.Name),
			Description: strings.TrimSpace(in.Description),
		})
	}
	return translations
}

// reconcileTranslations сопоставляет желаемый набор с существующим по
// нормализованному коду языка: совпавшие строки несут свой прежний ID,
// новые языки остаются с ID==0 и получат идентификатор при записи.
func reconcileTranslations(existing []domain.Translation, inputs []TranslationInput) []domain.Translation {
	byLanguage := make(map[string]int64, len(existing))
	for _, tr := range existing {
		byLanguage[domain.NormalizeLanguage(tr.Language)] = tr.ID
	}

	translations := normalizeTranslations(inputs)
	for i := range translations {
		translations[i].ID = byLanguage[translations[i].Language]
	}
	return translations
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
