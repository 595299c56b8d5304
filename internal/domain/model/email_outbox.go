package model

import "time"

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
	OutboxStatusFailed  OutboxStatus = "FAILED"
)

// 通知メールのoutbox。
// 注文トランザクション内でenqueueし、配信は別のworkerが行う。
// 配信失敗が注文の成否に波及することはない。
type EmailOutbox struct {
	ID        int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Recipient string       `gorm:"type:varchar(255);not null" json:"recipient"`
	Subject   string       `gorm:"type:varchar(255);not null" json:"subject"`
	Body      string       `gorm:"type:text;not null" json:"body"`
	Status    OutboxStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Attempts  int          `gorm:"not null;default:0" json:"attempts"`
	LastError string       `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	SentAt    *time.Time   `json:"sent_at,omitempty"`
}
