package domain

import (
	"errors"
	"strings"
)

var (
	// ErrProductNotFound возвращается, если товар не найден или мягко удалён.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvoiceNotFound возвращается, если счёт не найден (или не принадлежит пользователю).
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrUserNotFound возвращается справочником пользователей для неизвестного id.
	ErrUserNotFound = errors.New("user not found")
	// ErrInsufficientStock сигнализирует, что условное списание остатка не прошло:
	// конкурирующий заказ успел забрать остаток между проверкой и фиксацией.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateLanguage — конфликт уникальности языка в наборе переводов.
	ErrDuplicateLanguage = errors.New("duplicate language code")
	// Ошибка отсутствующего владельца счёта.
	ErrUserRequired = errors.New("user_id is required")
	// Ошибка счёта без единой позиции.
	ErrDetailsRequired = errors.New("invoice must contain at least one detail")
	// Ошибка некорректного количества в позиции (<= 0).
	ErrDetailQuantityInvalid = errors.New("detail quantity must be greater than zero")
	// Ошибка отрицательной цены позиции.
	ErrDetailPriceInvalid = errors.New("detail unit price must be non-negative")
	// Ошибка несоответствия LineTotal произведению цены и количества.
	ErrLineTotalMismatch = errors.New("line total does not match unit price * quantity")
	// Ошибка несоответствия итога счёта сумме позиций.
	ErrTotalAmountMismatch = errors.New("invoice total does not match details sum")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// ValidationError агрегирует упорядоченный список человекочитаемых сообщений
// о нарушениях бизнес-правил. Сервисы возвращают его вместо исключения,
// чтобы вызывающий увидел все проблемы за один обмен.
type ValidationError struct {
	Messages []string
}

// NewValidationError создаёт ValidationError из одного или нескольких сообщений.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// IsNotFound проверяет, относится ли ошибка к классу NotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// AsValidation извлекает ValidationError, если ошибка является нарушением бизнес-правил.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
