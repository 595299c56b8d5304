package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ecomart/internal/domain/model"
	repo "ecomart/internal/repository"
)

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	categoryRepo  repo.CategoryRepository
	conditionRepo repo.ProductConditionRepository
	storeRepo     repo.StoreRepository
	commentRepo   repo.CommentRepository
	auditRepo     repo.AuditLogRepository
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	conditionRepo repo.ProductConditionRepository,
	storeRepo repo.StoreRepository,
	commentRepo repo.CommentRepository,
	auditRepo repo.AuditLogRepository,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		conditionRepo: conditionRepo,
		storeRepo:     storeRepo,
		commentRepo:   commentRepo,
		auditRepo:     auditRepo,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// 公開中かつ在庫のある商品の一覧
func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid q")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          in.Q,
		CategoryID: in.CategoryID,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

type ProductDetailOutput struct {
	model.Product
	CommentCount int64 `json:"comment_count"`
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (ProductDetailOutput, error) {
	if productID <= 0 {
		return ProductDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	count, err := u.commentRepo.CountByProductID(ctx, productID)
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductDetailOutput{Product: p, CommentCount: count}, nil
}

type CreateProductInput struct {
	Name               string
	Note               string
	Price              decimal.Decimal
	AvailableQuantity  int
	ProductConditionID *int64
	CategoryIDs        []int64
	ImageURLs          []string
}

// 出店者が自ストアに商品を出す。公開はモデレーション後（active=false開始）。
func (u *ProductUsecase) CreateProduct(ctx context.Context, userID int64, in CreateProductInput) (model.Product, error) {
	if userID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	store, err := u.storeRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusForbidden, "no store")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if strings.TrimSpace(in.Name) == "" || len(in.Name) > 45 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if in.Price.LessThanOrEqual(decimal.Zero) {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.AvailableQuantity < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if len(in.CategoryIDs) == 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "missing categories")
	}
	if len(in.ImageURLs) == 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "missing images")
	}

	existing, err := u.categoryRepo.ExistingIDs(ctx, in.CategoryIDs)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(existing) != len(uniqueIDs(in.CategoryIDs)) {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "unknown category")
	}

	if in.ProductConditionID != nil {
		if _, err := u.conditionRepo.FindByID(ctx, *in.ProductConditionID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return model.Product{}, NewHTTPError(http.StatusBadRequest, "unknown condition")
			}
			return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	p := model.Product{
		StoreID:            store.ID,
		Name:               strings.TrimSpace(in.Name),
		Note:               in.Note,
		Price:              in.Price,
		AvailableQuantity:  in.AvailableQuantity,
		ProductConditionID: in.ProductConditionID,
	}

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.productRepo.ReplaceCategories(ctx, created.ID, in.CategoryIDs); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.productRepo.ReplaceImages(ctx, created.ID, in.ImageURLs); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.mustReload(ctx, created.ID)
}

type UpdateProductInput struct {
	Name               *string
	Note               *string
	Price              *decimal.Decimal
	AvailableQuantity  *int
	ProductConditionID *int64
	CategoryIDs        []int64
	ImageURLs          []string
}

// 自ストアの商品だけ更新できる
func (u *ProductUsecase) UpdateProduct(ctx context.Context, userID int64, productID int64, in UpdateProductInput) (model.Product, error) {
	p, err := u.authorizeOwner(ctx, userID, productID)
	if err != nil {
		return model.Product{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" || len(*in.Name) > 45 {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid name")
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Note != nil {
		p.Note = *in.Note
	}
	if in.Price != nil {
		if in.Price.LessThanOrEqual(decimal.Zero) {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price")
		}
		p.Price = *in.Price
	}
	if in.AvailableQuantity != nil {
		if *in.AvailableQuantity < 0 {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
		p.AvailableQuantity = *in.AvailableQuantity
	}
	if in.ProductConditionID != nil {
		if _, err := u.conditionRepo.FindByID(ctx, *in.ProductConditionID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return model.Product{}, NewHTTPError(http.StatusBadRequest, "unknown condition")
			}
			return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		p.ProductConditionID = in.ProductConditionID
	}

	if err := u.productRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.CategoryIDs != nil {
		existing, err := u.categoryRepo.ExistingIDs(ctx, in.CategoryIDs)
		if err != nil {
			return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(existing) != len(uniqueIDs(in.CategoryIDs)) {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "unknown category")
		}
		if err := u.productRepo.ReplaceCategories(ctx, p.ID, in.CategoryIDs); err != nil {
			return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}
	if in.ImageURLs != nil {
		if err := u.productRepo.ReplaceImages(ctx, p.ID, in.ImageURLs); err != nil {
			return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	return u.mustReload(ctx, p.ID)
}

func (u *ProductUsecase) DeleteProduct(ctx context.Context, userID int64, productID int64) error {
	if _, err := u.authorizeOwner(ctx, userID, productID); err != nil {
		return err
	}
	if err := u.productRepo.Delete(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 管理者による公開/非公開の切り替え。変更前後を監査ログに残す。
func (u *ProductUsecase) ModerateProduct(ctx context.Context, adminUserID int64, productID int64, active bool) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.productRepo.SetActive(ctx, productID, active); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	before, _ := json.Marshal(map[string]bool{"active": p.Active})
	after, _ := json.Marshal(map[string]bool{"active": active})
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionModerateProduct,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   string(before),
		AfterJSON:    string(after),
		CreatedAt:    time.Now(),
	})

	return nil
}

// 自ストアの商品一覧（非公開含む）
func (u *ProductUsecase) ListMyProducts(ctx context.Context, userID int64, page int, limit int) (ProductListOutput, error) {
	if userID <= 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	store, err := u.storeRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductListOutput{}, NewHTTPError(http.StatusForbidden, "no store")
	}
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, total, err := u.productRepo.ListByStoreID(ctx, store.ID, page, limit)
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ProductListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 所有チェック。OwnerID()と呼び出し元のuserIDを突き合せる。
func (u *ProductUsecase) authorizeOwner(ctx context.Context, userID int64, productID int64) (model.Product, error) {
	if userID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByIDWithStore(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.Store == nil || p.Store.OwnerID() != userID {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

func (u *ProductUsecase) mustReload(ctx context.Context, productID int64) (model.Product, error) {
	p, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
