package repository

import (
	"context"

	"ecomart/internal/domain/model"
)

type CommentRepository interface {
	// 本体と画像を同時に保存する（gormのassociationで1トランザクション）
	Create(ctx context.Context, c model.Comment) (model.Comment, error)
	ExistsByUserAndProduct(ctx context.Context, userID int64, productID int64) (bool, error)
	// 新しい順。画像込み。
	ListByProductID(ctx context.Context, productID int64, page int, limit int) ([]model.Comment, int64, error)
	CountByProductID(ctx context.Context, productID int64) (int64, error)
}
