package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ecomart/internal/domain/model"
	repo "ecomart/internal/repository"
)

type DeliveryInfoGormRepository struct {
	db *gorm.DB
}

// DI
func NewDeliveryInfoGormRepository(db *gorm.DB) *DeliveryInfoGormRepository {
	return &DeliveryInfoGormRepository{db: db}
}

func (r *DeliveryInfoGormRepository) Create(ctx context.Context, d model.DeliveryInformation) (model.DeliveryInformation, error) {
	if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
		return model.DeliveryInformation{}, err
	}
	return d, nil
}

func (r *DeliveryInfoGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.DeliveryInformation, error) {
	var addrs []model.DeliveryInformation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&addrs).Error; err != nil {
		return []model.DeliveryInformation{}, err
	}
	return addrs, nil
}

func (r *DeliveryInfoGormRepository) FindByID(ctx context.Context, id int64) (model.DeliveryInformation, error) {
	var d model.DeliveryInformation
	err := r.db.WithContext(ctx).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DeliveryInformation{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DeliveryInformation{}, err
	}
	return d, nil
}

func (r *DeliveryInfoGormRepository) Update(ctx context.Context, d model.DeliveryInformation) error {
	res := r.db.WithContext(ctx).Model(&model.DeliveryInformation{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
		"name":         d.Name,
		"phone_number": d.PhoneNumber,
		"address":      d.Address,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *DeliveryInfoGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.DeliveryInformation{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
