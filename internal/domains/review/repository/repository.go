package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"homestay/infras/otel"
	"homestay/infras/postgres"
	"homestay/internal/domains/review/model"
	gDto "homestay/shared/dto"
	gRepo "homestay/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Review interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Review) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Review, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Review, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Average(ctx context.Context, field string, filter gDto.FilterGroup) (float64, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Review]
}

func New(db *postgres.Connection, otel otel.Otel) Review {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Review](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
