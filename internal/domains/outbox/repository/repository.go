package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"homestay/infras/otel"
	"homestay/infras/postgres"
	"homestay/internal/domains/outbox/model"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/logger"
	gRepo "homestay/shared/repository"
	"time"

	"github.com/jmoiron/sqlx"
)

type Event interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Event) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	ClaimDueTx(ctx context.Context, sqltx *sqlx.Tx, now time.Time, limit int) ([]model.Event, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Event]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Event {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Event](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// ClaimDueTx locks up to limit pending events that are due. Rows locked by another relay are skipped.
func (r *repositoryImpl) ClaimDueTx(ctx context.Context, sqltx *sqlx.Tx, now time.Time, limit int) (events []model.Event, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".outbox.ClaimDueTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	query := fmt.Sprintf(`SELECT * FROM %s
		WHERE %s = $1 AND %s <= $2
		ORDER BY %s
		LIMIT $3
		FOR UPDATE SKIP LOCKED`,
		model.TableName, model.FieldStatus, model.FieldNextAttemptAt, model.FieldNextAttemptAt)

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	events = []model.Event{}
	if err = sqltx.SelectContext(ctx, &events, query, model.StatusPending, now, limit); err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to claim outbox events: %w", err)
	}

	return events, nil
}
