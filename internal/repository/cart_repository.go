package repository

import (
	"context"

	"ecomart/internal/domain/model"
)

type CartRepository interface {
	// ユーザーのカートを取得し、無ければ作成
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
}

type CartItemRepository interface {
	// updated_at降順で返す（グループ表示の並び基準）
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error)
	// 同一商品は数量加算
	UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int) error
	DeleteByCartAndProduct(ctx context.Context, cartID int64, productID int64) error
	// カート確定後の明細クリア
	DeleteByCartAndProducts(ctx context.Context, cartID int64, productIDs []int64) error
}
