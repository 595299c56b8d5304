package repository

import (
	"context"

	"ecomart/internal/domain/model"
)

type StoreListQuery struct {
	Page  int
	Limit int
	Q     string
}

type StoreRepository interface {
	Create(ctx context.Context, store model.Store) (model.Store, error)
	FindByID(ctx context.Context, storeID int64) (model.Store, error)
	//ユーザーが持つストア（無ければErrNotFound）
	FindByUserID(ctx context.Context, userID int64) (model.Store, error)
	List(ctx context.Context, q StoreListQuery) ([]model.Store, int64, error)
	Update(ctx context.Context, store model.Store) error
	Delete(ctx context.Context, storeID int64) error
}
