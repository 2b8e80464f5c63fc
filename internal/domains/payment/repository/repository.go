package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"homestay/infras/otel"
	"homestay/infras/postgres"
	"homestay/internal/domains/payment/model"
	gDto "homestay/shared/dto"
	gRepo "homestay/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Payment interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Payment) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Payment, error)
	GetTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Payment, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Payment, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	UpdateTxAffected(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Payment]
}

func New(db *postgres.Connection, otel otel.Otel) Payment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Payment](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
