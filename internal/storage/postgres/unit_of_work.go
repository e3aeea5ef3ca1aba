package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/vladislavdragonenkov/store/internal/domain"
)

// unitOfWork сводит транзакционную границу к одной SQL-транзакции:
// репозитории пишут через неё, Complete — это COMMIT, Rollback — ROLLBACK.
type unitOfWork struct {
	tx *sql.Tx

	once sync.Once
	done bool
}

func (u *unitOfWork) Products() domain.ProductRepository {
	return &productRepository{q: u.tx}
}

func (u *unitOfWork) Invoices() domain.InvoiceRepository {
	return &invoiceRepository{q: u.tx}
}

func (u *unitOfWork) Outbox() domain.OutboxEnqueuer {
	return &outboxEnqueuer{q: u.tx}
}

// Complete фиксирует транзакцию; database/sql не принимает контекст в Commit.
func (u *unitOfWork) Complete(_ context.Context) error {
	if u.done {
		return fmt.Errorf("transaction boundary already finished")
	}
	u.done = true
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Rollback безопасен после Complete и при повторных вызовах.
func (u *unitOfWork) Rollback() error {
	var err error
	u.once.Do(func() {
		if u.done {
			return
		}
		u.done = true
		if rbErr := u.tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = fmt.Errorf("rollback tx: %w", rbErr)
		}
	})
	return err
}

var _ domain.UnitOfWork = (*unitOfWork)(nil)
