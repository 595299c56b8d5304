package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"ecomart/internal/domain/model"
	repo "ecomart/internal/repository"
)

type StoreGormRepository struct {
	db *gorm.DB
}

// DI
func NewStoreGormRepository(db *gorm.DB) *StoreGormRepository {
	return &StoreGormRepository{db: db}
}

func (r *StoreGormRepository) Create(ctx context.Context, store model.Store) (model.Store, error) {
	if err := r.db.WithContext(ctx).Create(&store).Error; err != nil {
		return model.Store{}, err
	}
	return store, nil
}

func (r *StoreGormRepository) FindByID(ctx context.Context, storeID int64) (model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).First(&s, storeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Store{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Store{}, err
	}
	return s, nil
}

// ユーザーが持つストア（1ユーザー1ストア）
func (r *StoreGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Store{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Store{}, err
	}
	return s, nil
}

// ストア一覧（名前の部分一致＋ページング）
func (r *StoreGormRepository) List(ctx context.Context, q repo.StoreListQuery) ([]model.Store, int64, error) {
	var stores []model.Store
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Store{})

	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ?", like)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Store{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).Find(&stores).Error; err != nil {
		return []model.Store{}, 0, err
	}

	return stores, total, nil
}

func (r *StoreGormRepository) Update(ctx context.Context, store model.Store) error {
	res := r.db.WithContext(ctx).Model(&model.Store{}).Where("id = ?", store.ID).Updates(map[string]interface{}{
		"name":                store.Name,
		"phone_number":        store.PhoneNumber,
		"introduce":           store.Introduce,
		"address":             store.Address,
		"avatar_url":          store.AvatarURL,
		"bank_name":           store.BankName,
		"bank_account_name":   store.BankAccountName,
		"bank_account_number": store.BankAccountNumber,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *StoreGormRepository) Delete(ctx context.Context, storeID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Store{}, storeID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
