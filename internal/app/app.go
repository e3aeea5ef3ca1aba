package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/store/internal/health"
	"github.com/vladislavdragonenkov/store/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/store/internal/service/outbox"
	"github.com/vladislavdragonenkov/store/internal/version"
)

// Config описывает минимальные настройки запуска приложения.
type Config struct {
	MetricsAddr string

	// PostgresDSN включает PostgreSQL-хранилище; пустое значение —
	// in-memory режим для разработки и демо.
	PostgresDSN string

	// KafkaBrokers — список брокеров через запятую. Пустое значение
	// отключает публикацию событий (outbox копится до рестарта с Kafka).
	KafkaBrokers string
	KafkaTopic   string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
}

// DefaultConfig возвращает базовые настройки сервиса.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:        ":9090",
		KafkaTopic:         kafka.TopicInvoiceEvents,
		OutboxPollInterval: 5 * time.Second,
		OutboxBatchSize:    50,
		OutboxMaxAttempts:  5,
	}
}

func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if deps.CloseStore == nil {
			return
		}
		if closeErr := deps.CloseStore(); closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close store")
		}
	}()

	// HTTP health checks
	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", healthcheck.NewCheckerFunc("storage", func() error {
		checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return deps.PingStore(checkCtx)
	}))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	// Инициализация Kafka producer (опционально)
	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)

	workerDone := make(chan struct{})
	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, cfg.KafkaTopic)
		dlq := kafka.NewDeadLetterPublisher(kafkaProducer)
		worker := outbox.NewWorker(deps.OutboxRepo, publisher,
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(dlq),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		)
		go func() {
			defer close(workerDone)
			worker.Run(ctx)
		}()
	} else {
		close(workerDone)
		logger.Info("kafka не настроен, outbox worker не запущен")
	}

	<-ctx.Done()
	logger.Info("получен сигнал остановки, останавливаем сервис")

	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		logger.Warn("outbox worker не остановился за отведённый таймаут")
	}

	shutdownHTTP(metricsSrv, logger)
	closeKafka(kafkaProducer, logger)

	return ctx.Err()
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
