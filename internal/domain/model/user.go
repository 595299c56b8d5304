package model

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// 外部ID基盤のsubject（UID）で引く。初回アクセス時に作成される。
type User struct {
	ID  int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UID string `gorm:"type:varchar(128);uniqueIndex;not null" json:"-"`

	// roleはトークン由来ではなく業務側のメタデータ（不変）
	Role Role `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`

	Email          string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName      string `gorm:"type:varchar(100)" json:"first_name"`
	LastName       string `gorm:"type:varchar(100)" json:"last_name"`
	PhoneNumber    string `gorm:"type:varchar(15)" json:"phone_number"`
	PaymentAccount string `gorm:"type:varchar(255)" json:"payment_account,omitempty"`
	AvatarURL      string `gorm:"type:varchar(512)" json:"avatar"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
