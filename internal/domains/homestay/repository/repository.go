package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"homestay/infras/otel"
	"homestay/infras/postgres"
	"homestay/internal/domains/homestay/model"
	gDto "homestay/shared/dto"
	gRepo "homestay/shared/repository"
)

type Homestay interface {
	Insert(ctx context.Context, model model.Homestay) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Homestay, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Homestay, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Homestay]
}

func New(db *postgres.Connection, otel otel.Otel) Homestay {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Homestay](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
