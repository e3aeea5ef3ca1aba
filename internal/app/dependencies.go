package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/store/internal/domain"
	"github.com/vladislavdragonenkov/store/internal/service/catalog"
	"github.com/vladislavdragonenkov/store/internal/service/order"
	"github.com/vladislavdragonenkov/store/internal/service/userdir"
	"github.com/vladislavdragonenkov/store/internal/storage/memory"
	"github.com/vladislavdragonenkov/store/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Store      domain.Store
	OutboxRepo domain.OutboxRepository
	Users      domain.UserDirectory
	Catalog    catalog.Service
	Orders     order.Service
	Logger     *log.Entry

	// PingStore проверяет доступность хранилища (для health checks).
	PingStore func(ctx context.Context) error
	// CloseStore освобождает ресурсы хранилища при остановке.
	CloseStore func() error
}

// NewDependencies собирает зависимости приложения. Пустой DSN включает
// in-memory хранилище; непустой — PostgreSQL с применением миграций.
// NOTE: справочник пользователей — mock; в production окружении его
// заменяет клиент внешнего сервиса учётных записей.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Users:  userdir.NewSeededDirectory(),
		Logger: logger,
	}

	if cfg.PostgresDSN == "" {
		store := memory.NewStore()
		deps.Store = store
		deps.OutboxRepo = store.Outbox()
		deps.PingStore = func(context.Context) error { return nil }
		deps.CloseStore = func() error { return nil }
		logger.Info("using in-memory storage")
	} else {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		deps.Store = store
		deps.OutboxRepo = postgres.NewOutboxRepository(store)
		deps.PingStore = store.Ping
		deps.CloseStore = store.Close
		logger.Info("using postgres storage")
	}

	deps.Catalog = catalog.NewService(deps.Store, logger.WithField("component", "catalog"))
	deps.Orders = order.NewService(deps.Store, deps.Users, logger.WithField("component", "order"))

	return deps, nil
}
