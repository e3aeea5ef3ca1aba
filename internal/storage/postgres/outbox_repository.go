package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/store/internal/domain"
)

// outboxEnqueuer пишет события в таблицу outbox через текущую транзакцию,
// поэтому запись события фиксируется вместе с бизнес-мутациями.
type outboxEnqueuer struct {
	q querier
}

func (e *outboxEnqueuer) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := e.q.ExecContext(ctx, `
		INSERT INTO outbox_messages (id, aggregate_type, aggregate_id, event_type, payload, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
	`, msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload)
	if err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("enqueue outbox message: %w", err)
	}
	return msg, nil
}

// OutboxRepository — хранилище outbox поверх подключения вне транзакции.
// Его использует фоновый publisher для выборки и отметки сообщений.
type OutboxRepository struct {
	db *sql.DB
}

// NewOutboxRepository создаёт outbox-хранилище поверх подключения Store.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{db: store.db}
}

func (r *OutboxRepository) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	enqueuer := &outboxEnqueuer{q: r.db}
	return enqueuer.Enqueue(msg)
}

// PullPending возвращает до limit pending-сообщений, старые первыми.
func (r *OutboxRepository) PullPending(limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload
		FROM outbox_messages
		WHERE status = 'pending'
		ORDER BY created_at, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.OutboxMessage
	for rows.Next() {
		var msg domain.OutboxMessage
		if err := rows.Scan(&msg.ID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &msg.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return messages, nil
}

// Stats возвращает размер backlog и время самого старого pending-сообщения.
func (r *OutboxRepository) Stats() (domain.OutboxStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		stats  domain.OutboxStats
		oldest sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(created_at)
		FROM outbox_messages
		WHERE status = 'pending'
	`).Scan(&stats.PendingCount, &oldest)
	if err != nil {
		return domain.OutboxStats{}, fmt.Errorf("query outbox stats: %w", err)
	}
	if oldest.Valid {
		stats.OldestPendingAt = oldest.Time.UTC()
	}
	return stats, nil
}

// MarkSent помечает сообщение как отправленное.
func (r *OutboxRepository) MarkSent(id string) error {
	return r.markStatus(id, "sent", "")
}

// MarkFailed помечает сообщение как неотправленное после исчерпания retry.
func (r *OutboxRepository) MarkFailed(id string) error {
	return r.markStatus(id, "failed", "publish attempts exhausted")
}

func (r *OutboxRepository) markStatus(id, status, lastError string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE outbox_messages
		SET status = $2, attempts = attempts + 1, last_error = $3, updated_at = $4
		WHERE id = $1
	`, id, status, lastError, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark outbox message %s as %s: %w", id, status, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark outbox message %s rows affected: %w", id, err)
	}
	if affected == 0 {
		return domain.ErrOutboxPublish
	}
	return nil
}

var (
	_ domain.OutboxEnqueuer   = (*outboxEnqueuer)(nil)
	_ domain.OutboxRepository = (*OutboxRepository)(nil)
)
