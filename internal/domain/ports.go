package domain

import "time"

// User — проекция учётной записи из внешнего справочника пользователей.
// Аутентификация и роли принадлежат внешнему коллаборатору, не этому ядру.
type User struct {
	ID       int64
	Email    string
	FullName string
	Locked   bool
}

// UserDirectory описывает поиск пользователей по идентификатору.
type UserDirectory interface {
	// FindByID возвращает пользователя или ErrUserNotFound.
	FindByID(id int64) (User, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
