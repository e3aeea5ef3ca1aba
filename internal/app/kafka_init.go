package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/store/internal/messaging/kafka"
)

// initKafkaProducer подключает producer для публикации событий магазина.
// Пустой список брокеров выключает Kafka; ошибка подключения не
// останавливает сервис — события копятся в outbox до следующего запуска.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	if brokers == "" {
		return nil, nil
	}

	brokerList := strings.Split(brokers, ",")
	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("kafka unavailable, events stay in outbox")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer ready")
	return producer, nil
}

// closeKafka закрывает producer при остановке сервиса.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return
	}
	logger.Info("kafka producer closed")
}
