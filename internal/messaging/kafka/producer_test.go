package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(value)
}

func newProducerForTest(t *testing.T) (*Producer, *mocks.SyncProducer) {
	t.Helper()

	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}
	return producer, mockProducer
}

func TestProducer_PublishEvent(t *testing.T) {
	producer, mockProducer := newProducerForTest(t)
	mockProducer.ExpectSendMessageAndSucceed()

	event := NewInvoiceCreatedEvent(7, 1, mustDecimal(t, "30.00"), 2, 3, time.Now().UTC())

	if err := producer.PublishEvent(TopicInvoiceEvents, "7", event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_BrokerError(t *testing.T) {
	producer, mockProducer := newProducerForTest(t)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewProductEvent(EventTypeProductCreated, 1, mustDecimal(t, "5.00"), 10, time.Now().UTC())

	if err := producer.PublishEvent(TopicCatalogEvents, "1", event); err == nil {
		t.Fatal("expected broker error")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_UnserializableEvent(t *testing.T) {
	producer, mockProducer := newProducerForTest(t)

	// Канал не сериализуется в JSON: ошибка до обращения к брокеру.
	if err := producer.PublishEvent(TopicInvoiceEvents, "1", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewProducerConfig_IdempotentDelivery(t *testing.T) {
	config := newProducerConfig()

	if !config.Producer.Idempotent {
		t.Error("expected idempotent producer")
	}
	if config.Producer.RequiredAcks != sarama.WaitForAll {
		t.Errorf("expected WaitForAll acks, got %v", config.Producer.RequiredAcks)
	}
	if config.Net.MaxOpenRequests != 1 {
		t.Errorf("expected MaxOpenRequests 1, got %d", config.Net.MaxOpenRequests)
	}
	if !config.Producer.Return.Successes {
		t.Error("sync producer requires Return.Successes")
	}
}
