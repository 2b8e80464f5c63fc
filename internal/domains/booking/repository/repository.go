package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"homestay/infras/otel"
	"homestay/infras/postgres"
	"homestay/internal/domains/booking/model"
	gDto "homestay/shared/dto"
	gRepo "homestay/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Booking interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	UpdateAffected(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	UpdateTxAffected(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type Item interface {
	InsertBulkTx(ctx context.Context, sqltx *sqlx.Tx, models []model.Item) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Item, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

type itemRepositoryImpl struct {
	gRepo.Repository[model.Item]
}

func NewItem(db *postgres.Connection, otel otel.Otel) Item {
	return &itemRepositoryImpl{
		Repository: gRepo.NewRepository[model.Item](model.ItemEntityName, model.ItemTableName, model.FieldID, db, otel),
	}
}
