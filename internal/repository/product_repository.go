package repository

import (
	"context"

	"ecomart/internal/domain/model"
)

// 公開一覧の検索条件
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// activeかつ在庫ありだけを返す
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// Store込みで1件取得（認可チェック用）
	FindByIDWithStore(ctx context.Context, id int64) (model.Product, error)
	ListByStoreID(ctx context.Context, storeID int64, page int, limit int) ([]model.Product, int64, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error

	// カテゴリの付け替え（全置換）
	ReplaceCategories(ctx context.Context, productID int64, categoryIDs []int64) error
	// 画像の全置換
	ReplaceImages(ctx context.Context, productID int64, urls []string) error
	// モデレーション
	SetActive(ctx context.Context, productID int64, active bool) error
}

// 在庫の読み替え。注文確定時の条件付き減算だけを約束。
type InventoryRepository interface {
	// available_quantity >= qty のときだけ減算し、purchasesを同量加算。
	// 足りなければfalse。
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int) (bool, error)
}
