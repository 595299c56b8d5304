package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID int64  `gorm:"not null;index" json:"store_id"`
	Name    string `gorm:"type:varchar(45);not null" json:"name"`
	Note    string `gorm:"type:varchar(100)" json:"note,omitempty"`

	// 注文確定後も0未満にはならない
	AvailableQuantity int `gorm:"not null" json:"available_quantity"`

	// モデレーション（falseのまま公開されない）
	Active bool `gorm:"not null;default:false" json:"active"`

	Price decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`

	// 累計販売数（単調増加）
	Purchases int `gorm:"not null;default:0" json:"purchases"`

	ProductConditionID *int64 `gorm:"index" json:"product_condition_id,omitempty"`

	Categories []Category     `gorm:"many2many:product_categories" json:"categories,omitempty"`
	Images     []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	// 認可用に埋める（保存対象ではない）
	Store *Store `gorm:"foreignKey:StoreID" json:"-"`
}

type ProductImage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  int64     `gorm:"not null;index" json:"product_id"`
	URL        string    `gorm:"type:varchar(512);not null" json:"image"`
	UploadedAt time.Time `gorm:"not null;autoCreateTime" json:"uploaded_at"`
}

// 商品の状態（新品・中古など）のマスタ
type ProductCondition struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(45);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:varchar(150)" json:"description"`
}

type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(45);uniqueIndex;not null" json:"name"`
}
