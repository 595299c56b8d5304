package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ecomart/internal/domain/model"
	repo "ecomart/internal/repository"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

// DI
func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("id asc").Find(&categories).Error; err != nil {
		return []model.Category{}, err
	}
	return categories, nil
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (r *CategoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (r *CategoryGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 渡されたIDのうち実在するものだけを返す
func (r *CategoryGormRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	var found []int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return []int64{}, err
	}
	return found, nil
}

type ProductConditionGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductConditionGormRepository(db *gorm.DB) *ProductConditionGormRepository {
	return &ProductConditionGormRepository{db: db}
}

func (r *ProductConditionGormRepository) List(ctx context.Context) ([]model.ProductCondition, error) {
	var conditions []model.ProductCondition
	if err := r.db.WithContext(ctx).Order("id asc").Find(&conditions).Error; err != nil {
		return []model.ProductCondition{}, err
	}
	return conditions, nil
}

func (r *ProductConditionGormRepository) FindByID(ctx context.Context, id int64) (model.ProductCondition, error) {
	var c model.ProductCondition
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductCondition{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductCondition{}, err
	}
	return c, nil
}

type OrderStatusGormRepository struct {
	db *gorm.DB
}

// DI
func NewOrderStatusGormRepository(db *gorm.DB) *OrderStatusGormRepository {
	return &OrderStatusGormRepository{db: db}
}

func (r *OrderStatusGormRepository) List(ctx context.Context) ([]model.OrderStatus, error) {
	var statuses []model.OrderStatus
	if err := r.db.WithContext(ctx).Order("id asc").Find(&statuses).Error; err != nil {
		return []model.OrderStatus{}, err
	}
	return statuses, nil
}

func (r *OrderStatusGormRepository) FindByID(ctx context.Context, id int64) (model.OrderStatus, error) {
	var s model.OrderStatus
	err := r.db.WithContext(ctx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderStatus{}, repo.ErrNotFound
	}
	if err != nil {
		return model.OrderStatus{}, err
	}
	return s, nil
}
