package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ecomart/internal/domain/model"
	repo "ecomart/internal/repository"
)

type OutboxGormRepository struct {
	db *gorm.DB
}

// DI
func NewOutboxGormRepository(db *gorm.DB) *OutboxGormRepository {
	return &OutboxGormRepository{db: db}
}

func (r *OutboxGormRepository) Enqueue(ctx context.Context, m model.EmailOutbox) error {
	m.Status = model.OutboxStatusPending
	return r.db.WithContext(ctx).Create(&m).Error
}

// 配信待ちを古い順にlimit件
func (r *OutboxGormRepository) ListPending(ctx context.Context, limit int) ([]model.EmailOutbox, error) {
	var mails []model.EmailOutbox
	if err := r.db.WithContext(ctx).
		Where("status = ?", model.OutboxStatusPending).
		Order("id asc").
		Limit(limit).
		Find(&mails).Error; err != nil {
		return []model.EmailOutbox{}, err
	}
	return mails, nil
}

func (r *OutboxGormRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.EmailOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  model.OutboxStatusSent,
			"sent_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// attemptsを進めて失敗を記録。final=trueでFAILED確定、以降は拾わない。
func (r *OutboxGormRepository) MarkFailed(ctx context.Context, id int64, lastError string, final bool) error {
	status := model.OutboxStatusPending
	if final {
		status = model.OutboxStatusFailed
	}
	res := r.db.WithContext(ctx).Model(&model.EmailOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
