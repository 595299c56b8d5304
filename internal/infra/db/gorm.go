package db

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ecomart/internal/domain/model"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect() (*gorm.DB, error) {
	// DATABASE_URL があれば最優先で使う
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	host := getenv("POSTGRES_HOST", "localhost")
	port := getenv("POSTGRES_PORT", "5432")
	user := getenv("POSTGRES_USER", "postgres")
	pass := getenv("POSTGRES_PASSWORD", "postgres")
	name := getenv("POSTGRES_DB", "ecomart")
	ssl := getenv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, name, ssl,
	)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Migrate は全モデルのスキーマを揃える。
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&model.User{},
		&model.Store{},
		&model.ProductCondition{},
		&model.Category{},
		&model.Product{},
		&model.ProductImage{},
		&model.OrderStatus{},
		&model.Order{},
		&model.OrderItem{},
		&model.Cart{},
		&model.CartItem{},
		&model.Comment{},
		&model.CommentImage{},
		&model.Voucher{},
		&model.DeliveryInformation{},
		&model.Transaction{},
		&model.EmailOutbox{},
		&model.AuditLog{},
	)
}

// SeedOrderStatuses はステータスカタログの既定行を入れる（既にあれば触らない）。
// 遷移ルールはIDリテラル駆動なのでIDは固定。
func SeedOrderStatuses(gormDB *gorm.DB) error {
	statuses := []model.OrderStatus{
		{ID: model.OrderStatusPending, StatusName: "Pending"},
		{ID: model.OrderStatusAccepted, StatusName: "Accepted"},
		{ID: model.OrderStatusAwaitingDelivery, StatusName: "Awaiting delivery"},
		{ID: model.OrderStatusCancelRequested, StatusName: "Cancel requested"},
		{ID: model.OrderStatusReturned, StatusName: "Returned"},
		{ID: model.OrderStatusCompleted, StatusName: "Completed"},
	}

	for _, s := range statuses {
		var count int64
		if err := gormDB.Model(&model.OrderStatus{}).Where("id = ?", s.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := gormDB.Create(&s).Error; err != nil {
			return err
		}
	}
	return nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
