package model

import "time"

// 配送先住所。保存時にジオコーダで実在確認済みのものだけ入る。
type DeliveryInformation struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;index;uniqueIndex:idx_user_delivery,priority:1" json:"user_id"`
	Name        string    `gorm:"type:varchar(45);not null;uniqueIndex:idx_user_delivery,priority:2" json:"name"`
	PhoneNumber string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_user_delivery,priority:3" json:"phone_number"`
	Address     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_user_delivery,priority:4" json:"address"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 所有者のユーザーID（認可チェック用）
func (d *DeliveryInformation) OwnerID() int64 {
	return d.UserID
}
