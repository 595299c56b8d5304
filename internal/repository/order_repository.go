package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"ecomart/internal/domain/model"
)

type OrderListFilter struct {
	Page     int
	Limit    int
	StatusID *int64
}

// ストアごとのステータス内訳
type OrderStatusCount struct {
	StatusID   int64  `json:"status_id"`
	StatusName string `json:"status_name"`
	Count      int64  `json:"count"`
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (model.Order, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByPayOSOrderCode(ctx context.Context, payosOrderCode int64) (model.Order, error)
	// order_codeが使用済みか（採番のリトライ判定）
	ExistsByOrderCode(ctx context.Context, code string) (bool, error)

	ListByUserID(ctx context.Context, userID int64, f OrderListFilter) ([]model.Order, int64, error)
	ListByStoreID(ctx context.Context, storeID int64, f OrderListFilter) ([]model.Order, int64, error)

	UpdateStatus(ctx context.Context, orderID int64, statusID int64) error
	// 決済フィールドだけを保存する
	UpdatePayment(ctx context.Context, order model.Order) error

	CountByStoreAndStatus(ctx context.Context, storeID int64) ([]OrderStatusCount, error)
	CountByStoreID(ctx context.Context, storeID int64) (int64, error)
	// 完了済み注文のtotal_cost合計
	SumCompletedRevenue(ctx context.Context, storeID int64) (decimal.Decimal, error)
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	// 完了済み注文にその商品が含まれるか（レビュー資格の判定）
	ExistsCompletedPurchase(ctx context.Context, userID int64, productID int64) (bool, error)
}
