package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 決済完了時に作られる手数料の内訳。1注文につき1件。
type Transaction struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64           `gorm:"not null;uniqueIndex" json:"order_id"`
	TxnRef       string          `gorm:"type:varchar(100)" json:"txn_ref"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PayDate      time.Time       `gorm:"not null" json:"pay_date"`
	PlatformFee  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"platform_fee"`
	StoreRevenue decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"store_revenue"`
}
