package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"homestay/infras/otel"
	"homestay/infras/postgres"
	"homestay/internal/domains/notification/model"
	gDto "homestay/shared/dto"
	gRepo "homestay/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Notification interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Notification) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Notification, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateAffected(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Notification]
}

func New(db *postgres.Connection, otel otel.Otel) Notification {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Notification](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
