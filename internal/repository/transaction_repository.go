package repository

import (
	"context"

	"ecomart/internal/domain/model"
)

// 手数料内訳の保存。1注文1件を冪等に守る。
type TransactionRepository interface {
	// 既に同じorder_idの行があれば何もしない
	CreateIfAbsent(ctx context.Context, t model.Transaction) error
	FindByOrderID(ctx context.Context, orderID int64) (model.Transaction, error)
}
