package model

import "time"

// レビュー。(user, product)で一意 ＝ 1商品につき1回だけ。
// 完了済み注文にその商品が含まれるユーザーだけが書ける。
type Comment struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64  `gorm:"not null;index;uniqueIndex:idx_user_product" json:"user_id"`
	ProductID int64  `gorm:"not null;index;uniqueIndex:idx_user_product" json:"product_id"`
	Content   string `gorm:"type:text;not null" json:"content"`

	// 1〜5
	Rating int `gorm:"not null;default:5" json:"rating"`

	Images []CommentImage `gorm:"foreignKey:CommentID" json:"images,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_date"`
}

// 所有者のユーザーID（認可チェック用）
func (c *Comment) OwnerID() int64 {
	return c.UserID
}

type CommentImage struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CommentID int64  `gorm:"not null;index" json:"comment_id"`
	URL       string `gorm:"type:varchar(512);not null" json:"image"`
}
