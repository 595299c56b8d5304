package model

import "time"

// 出店者のストア。1ユーザーにつき1つ。
// Addressは配送料計算の出発地点として使う。
type Store struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64  `gorm:"not null;uniqueIndex" json:"user_id"`
	Name        string `gorm:"type:varchar(45);uniqueIndex;not null" json:"name"`
	PhoneNumber string `gorm:"type:varchar(10)" json:"phone_number"`
	Introduce   string `gorm:"type:varchar(150)" json:"introduce"`
	Address     string `gorm:"type:varchar(100);not null" json:"address"`
	AvatarURL   string `gorm:"type:varchar(512)" json:"avatar"`

	// 売上振込先
	BankName          string `gorm:"type:varchar(255)" json:"bank_name,omitempty"`
	BankAccountName   string `gorm:"type:varchar(255)" json:"bank_account_name,omitempty"`
	BankAccountNumber string `gorm:"type:varchar(100)" json:"bank_account_number,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 所有者のユーザーID（認可チェック用）
func (s *Store) OwnerID() int64 {
	return s.UserID
}
