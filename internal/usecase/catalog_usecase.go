package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ecomart/internal/domain/model"
	repo "ecomart/internal/repository"
)

// カテゴリ・商品状態・注文ステータスのマスタ参照とカテゴリ管理。
type CatalogUsecase struct {
	categoryRepo    repo.CategoryRepository
	conditionRepo   repo.ProductConditionRepository
	orderStatusRepo repo.OrderStatusRepository
}

// DI
func NewCatalogUsecase(
	categoryRepo repo.CategoryRepository,
	conditionRepo repo.ProductConditionRepository,
	orderStatusRepo repo.OrderStatusRepository,
) *CatalogUsecase {
	return &CatalogUsecase{
		categoryRepo:    categoryRepo,
		conditionRepo:   conditionRepo,
		orderStatusRepo: orderStatusRepo,
	}
}

func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return categories, nil
}

// 管理者のみ（roleチェックはhandler側のguardで済ませる）
func (u *CatalogUsecase) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 45 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	c, err := u.categoryRepo.Create(ctx, model.Category{Name: name})
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *CatalogUsecase) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.categoryRepo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CatalogUsecase) ListProductConditions(ctx context.Context) ([]model.ProductCondition, error) {
	conditions, err := u.conditionRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return conditions, nil
}

func (u *CatalogUsecase) ListOrderStatuses(ctx context.Context) ([]model.OrderStatus, error) {
	statuses, err := u.orderStatusRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return statuses, nil
}
