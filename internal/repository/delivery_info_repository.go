package repository

import (
	"context"

	"ecomart/internal/domain/model"
)

// 配送先住所を保存・取得する窓口
type DeliveryInfoRepository interface {
	Create(ctx context.Context, d model.DeliveryInformation) (model.DeliveryInformation, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.DeliveryInformation, error)
	FindByID(ctx context.Context, id int64) (model.DeliveryInformation, error)
	Update(ctx context.Context, d model.DeliveryInformation) error
	Delete(ctx context.Context, id int64) error
}
