package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 割引クーポン。有効 = is_active かつ 期間内 かつ used_count < quantity。
type Voucher struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// 未指定なら英大文字8桁を自動採番
	Code string `gorm:"type:varchar(8);uniqueIndex;not null" json:"code"`

	Description     string          `gorm:"type:text" json:"description,omitempty"`
	DiscountPercent int             `gorm:"not null;default:0" json:"discount_percent"`
	MinOrderValue   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"min_order_value"`

	Quantity  int `gorm:"not null;default:1" json:"quantity"`
	UsedCount int `gorm:"not null;default:0" json:"used_count"`

	StartDate  time.Time `gorm:"not null" json:"start_date"`
	ExpiryDate time.Time `gorm:"not null" json:"expiry_date"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (v *Voucher) IsValid(now time.Time) bool {
	return v.IsActive &&
		!now.Before(v.StartDate) && !now.After(v.ExpiryDate) &&
		v.UsedCount < v.Quantity
}
