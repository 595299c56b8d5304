package repository

import (
	"context"

	"ecomart/internal/domain/model"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Delete(ctx context.Context, id int64) error
	// 存在するIDだけを返す（商品作成時の検証用）
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type ProductConditionRepository interface {
	List(ctx context.Context) ([]model.ProductCondition, error)
	FindByID(ctx context.Context, id int64) (model.ProductCondition, error)
}

type OrderStatusRepository interface {
	List(ctx context.Context) ([]model.OrderStatus, error)
	FindByID(ctx context.Context, id int64) (model.OrderStatus, error)
}
