package repository

import (
	"context"

	"gorm.io/gorm"

	"ecomart/internal/domain/model"
)

type CommentGormRepository struct {
	db *gorm.DB
}

// DI
func NewCommentGormRepository(db *gorm.DB) *CommentGormRepository {
	return &CommentGormRepository{db: db}
}

// 本体と画像をまとめて保存（associationごとCreate）
func (r *CommentGormRepository) Create(ctx context.Context, c model.Comment) (model.Comment, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Comment{}, err
	}
	return c, nil
}

func (r *CommentGormRepository) ExistsByUserAndProduct(ctx context.Context, userID int64, productID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// 新しい順。画像込み。
func (r *CommentGormRepository) ListByProductID(ctx context.Context, productID int64, page int, limit int) ([]model.Comment, int64, error) {
	var comments []model.Comment
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Comment{}).Where("product_id = ?", productID)

	if err := tx.Count(&total).Error; err != nil {
		return []model.Comment{}, 0, err
	}

	offset := (page - 1) * limit
	if err := tx.Preload("Images").
		Order("created_at desc").Order("id desc").
		Offset(offset).Limit(limit).Find(&comments).Error; err != nil {
		return []model.Comment{}, 0, err
	}

	return comments, total, nil
}

func (r *CommentGormRepository) CountByProductID(ctx context.Context, productID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
