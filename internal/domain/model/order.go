package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文ステータスの閉じたカタログ。
// 遷移ルールはIDリテラル駆動（5は定義だけあり、出入りする遷移は無い）。
const (
	OrderStatusPending          int64 = 1
	OrderStatusAccepted         int64 = 2
	OrderStatusAwaitingDelivery int64 = 3
	OrderStatusCancelRequested  int64 = 4
	OrderStatusReturned         int64 = 5
	OrderStatusCompleted        int64 = 6
)

type OrderStatus struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	StatusName string `gorm:"type:varchar(45);not null" json:"status_name"`
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash payment"
	PaymentMethodOnline PaymentMethod = "online payment"
)

// 1注文は1ストアに閉じる（OrderItemは全て同じストアの商品）。
type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// 初回保存で一度だけ採番され、以後変わらない
	OrderCode string `gorm:"type:varchar(20);uniqueIndex;not null" json:"order_code"`

	UserID        int64 `gorm:"not null;index" json:"user_id"`
	StoreID       int64 `gorm:"not null;index" json:"store_id"`
	OrderStatusID int64 `gorm:"not null;index" json:"order_status_id"`

	ShipFee   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"ship_fee"`
	TotalCost decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_cost"`

	Note          string        `gorm:"type:varchar(45)" json:"note,omitempty"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null;default:'cash payment'" json:"payment_method"`

	VoucherID      *int64 `gorm:"index" json:"voucher_id,omitempty"`
	DeliveryInfoID *int64 `json:"delivery_info_id,omitempty"`

	IsPaid bool       `gorm:"not null;default:false" json:"is_paid"`
	PaidAt *time.Time `json:"paid_at,omitempty"`

	// PayOS連携フィールド
	PayOSOrderCode     *int64     `gorm:"uniqueIndex" json:"payos_order_code,omitempty"`
	PayOSPaymentURL    string     `gorm:"type:varchar(512)" json:"payos_payment_url,omitempty"`
	PayOSQRCode        string     `gorm:"type:text" json:"payos_qr_code,omitempty"`
	PayOSStatus        string     `gorm:"type:varchar(20)" json:"payos_status,omitempty"`
	PayOSTransactionID string     `gorm:"type:varchar(100)" json:"payos_transaction_id,omitempty"`
	PayOSPaidAt        *time.Time `json:"payos_paid_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 所有者のユーザーID（認可チェック用）
func (o *Order) OwnerID() int64 {
	return o.UserID
}

// 数量スナップショット。価格は注文時のProduct.Priceで積算済み。
type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
