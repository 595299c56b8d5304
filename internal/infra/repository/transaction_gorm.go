package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecomart/internal/domain/model"
	repo "ecomart/internal/repository"
)

type TransactionGormRepository struct {
	db *gorm.DB
}

// DI
func NewTransactionGormRepository(db *gorm.DB) *TransactionGormRepository {
	return &TransactionGormRepository{db: db}
}

// 同じorder_idの行が既にあれば何もしない（webhookの重複配信に耐える）
func (r *TransactionGormRepository) CreateIfAbsent(ctx context.Context, t model.Transaction) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(&t).Error
}

func (r *TransactionGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Transaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}
