package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"homestay/infras/otel"
	"homestay/infras/postgres"
	"homestay/internal/domains/cart/model"
	gDto "homestay/shared/dto"
	gRepo "homestay/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Cart interface {
	Insert(ctx context.Context, model model.Cart) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Cart, error)
	GetTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Cart, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
}

type Item interface {
	Insert(ctx context.Context, model model.Item) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Item, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Item, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	UpdateTxAffected(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type cartRepository struct {
	gRepo.Repository[model.Cart]
}

type itemRepository struct {
	gRepo.Repository[model.Item]
}

func New(db *postgres.Connection, otel otel.Otel) Cart {
	return &cartRepository{
		Repository: gRepo.NewRepository[model.Cart](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

func NewItem(db *postgres.Connection, otel otel.Otel) Item {
	return &itemRepository{
		Repository: gRepo.NewRepository[model.Item](model.ItemEntityName, model.ItemTableName, model.FieldID, db, otel),
	}
}
