package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ecomart/internal/domain/model"
	repo "ecomart/internal/repository"
)

type OrderGormRepository struct {
	db *gorm.DB
}

// DI
func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// webhookが運ぶ数値コードから注文を引く
func (r *OrderGormRepository) FindByPayOSOrderCode(ctx context.Context, payosOrderCode int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("pay_os_order_code = ?", payosOrderCode).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// order_codeが使用済みか（採番のリトライ判定）
func (r *OrderGormRepository) ExistsByOrderCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, f repo.OrderListFilter) ([]model.Order, int64, error) {
	return r.list(ctx, "user_id", userID, f)
}

func (r *OrderGormRepository) ListByStoreID(ctx context.Context, storeID int64, f repo.OrderListFilter) ([]model.Order, int64, error) {
	return r.list(ctx, "store_id", storeID, f)
}

func (r *OrderGormRepository) list(ctx context.Context, column string, id int64, f repo.OrderListFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Order{}).Where(column+" = ?", id)
	if f.StatusID != nil {
		tx = tx.Where("order_status_id = ?", *f.StatusID)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(f.Limit).Find(&orders).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return orders, total, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, statusID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("order_status_id", statusID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 決済フィールドだけを保存する
func (r *OrderGormRepository) UpdatePayment(ctx context.Context, order model.Order) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"is_paid":               order.IsPaid,
		"paid_at":               order.PaidAt,
		"pay_os_order_code":     order.PayOSOrderCode,
		"pay_os_payment_url":    order.PayOSPaymentURL,
		"pay_os_qr_code":        order.PayOSQRCode,
		"pay_os_status":         order.PayOSStatus,
		"pay_os_transaction_id": order.PayOSTransactionID,
		"pay_os_paid_at":        order.PayOSPaidAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ストアのステータス内訳（0件のステータスも行として返す）
func (r *OrderGormRepository) CountByStoreAndStatus(ctx context.Context, storeID int64) ([]repo.OrderStatusCount, error) {
	var rows []repo.OrderStatusCount
	err := r.db.WithContext(ctx).
		Table("order_statuses AS s").
		Select("s.id AS status_id, s.status_name AS status_name, COUNT(o.id) AS count").
		Joins("LEFT JOIN orders o ON o.order_status_id = s.id AND o.store_id = ?", storeID).
		Group("s.id, s.status_name").
		Order("s.id asc").
		Scan(&rows).Error
	if err != nil {
		return []repo.OrderStatusCount{}, err
	}
	return rows, nil
}

func (r *OrderGormRepository) CountByStoreID(ctx context.Context, storeID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("store_id = ?", storeID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// 完了済み注文のtotal_cost合計
func (r *OrderGormRepository) SumCompletedRevenue(ctx context.Context, storeID int64) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("SUM(total_cost)").
		Where("store_id = ? AND order_status_id = ?", storeID, model.OrderStatusCompleted).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

type OrderItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.OrderItem{}, err
	}
	return items, nil
}

// 完了済み注文にその商品が含まれるか（レビュー資格の判定）
func (r *OrderItemGormRepository) ExistsCompletedPurchase(ctx context.Context, userID int64, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Joins("JOIN orders o ON o.id = order_items.order_id").
		Where("o.user_id = ? AND order_items.product_id = ? AND o.order_status_id = ?",
			userID, productID, model.OrderStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
