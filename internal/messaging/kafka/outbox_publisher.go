package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/store/internal/domain"
)

// OutboxTopicPublisher публикует outbox-сообщения в Kafka, выбирая topic
// по типу агрегата: события счетов и события каталога идут раздельно.
type OutboxTopicPublisher struct {
	producer     *Producer
	defaultTopic string
	routes       map[string]string
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
// defaultTopic принимает события счетов; события агрегата "product"
// маршрутизируются в topic каталога.
func NewOutboxPublisher(producer *Producer, defaultTopic string) domain.OutboxPublisher {
	if defaultTopic == "" {
		defaultTopic = TopicInvoiceEvents
	}
	return &OutboxTopicPublisher{
		producer:     producer,
		defaultTopic: defaultTopic,
		routes: map[string]string{
			"product": TopicCatalogEvents,
		},
	}
}

// NewDeadLetterPublisher создаёт паблишер с фиксированным DLQ topic —
// недоставленные сообщения не маршрутизируются по типу агрегата.
func NewDeadLetterPublisher(producer *Producer) domain.OutboxPublisher {
	return &OutboxTopicPublisher{
		producer:     producer,
		defaultTopic: TopicDeadLetterQueue,
	}
}

// topicFor возвращает topic для сообщения с учётом маршрутов агрегатов.
func (p *OutboxTopicPublisher) topicFor(event domain.OutboxMessage) string {
	if topic, ok := p.routes[event.AggregateType]; ok {
		return topic
	}
	return p.defaultTopic
}

func (p *OutboxTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	envelope := struct {
		ID            string          `json:"id"`
		AggregateType string          `json:"aggregate_type"`
		AggregateID   string          `json:"aggregate_id"`
		EventType     string          `json:"event_type"`
		Payload       json.RawMessage `json:"payload"`
		PublishedAt   time.Time       `json:"published_at"`
	}{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	}

	return p.producer.PublishEvent(p.topicFor(event), key, envelope)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
