package transaction

//go:generate go run go.uber.org/mock/mockgen -source=./transaction.go -destination=./mocks/transaction_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"homestay/infras/otel"
	"homestay/infras/postgres"
	"homestay/shared/constant"
	"homestay/shared/logger"

	"github.com/jmoiron/sqlx"
)

type TxFunc func(ctx context.Context, tx *sqlx.Tx) error

type Transactor interface {
	WithTx(ctx context.Context, fn TxFunc) error
}

type transactor struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Transactor {
	return &transactor{
		db:   db,
		otel: otel,
	}
}

// WithTx runs fn inside a write transaction. The transaction is committed when fn
// returns nil and rolled back otherwise, including when fn panics.
func (t *transactor) WithTx(ctx context.Context, fn TxFunc) (err error) {
	ctx, scope := t.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".WithTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tx, err := t.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.ErrorWithStack(rbErr)

			return errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
