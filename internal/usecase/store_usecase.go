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
	"ecomart/internal/geo"
	repo "ecomart/internal/repository"
)

type StoreUsecase struct {
	storeRepo       repo.StoreRepository
	productRepo     repo.ProductRepository
	orderRepo       repo.OrderRepository
	orderStatusRepo repo.OrderStatusRepository
	auditRepo       repo.AuditLogRepository
	geocoder        geo.Geocoder
}

// DI
func NewStoreUsecase(
	storeRepo repo.StoreRepository,
	productRepo repo.ProductRepository,
	orderRepo repo.OrderRepository,
	orderStatusRepo repo.OrderStatusRepository,
	auditRepo repo.AuditLogRepository,
	geocoder geo.Geocoder,
) *StoreUsecase {
	return &StoreUsecase{
		storeRepo:       storeRepo,
		productRepo:     productRepo,
		orderRepo:       orderRepo,
		orderStatusRepo: orderStatusRepo,
		auditRepo:       auditRepo,
		geocoder:        geocoder,
	}
}

type CreateStoreInput struct {
	Name              string
	PhoneNumber       string
	Introduce         string
	Address           string
	AvatarURL         string
	BankName          string
	BankAccountName   string
	BankAccountNumber string
}

// 1ユーザー1ストア。住所はジオコーダで実在確認してから保存する。
func (u *StoreUsecase) CreateStore(ctx context.Context, userID int64, in CreateStoreInput) (model.Store, error) {
	if userID <= 0 {
		return model.Store{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" || len(in.Name) > 45 {
		return model.Store{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if strings.TrimSpace(in.Address) == "" {
		return model.Store{}, NewHTTPError(http.StatusBadRequest, "missing address")
	}

	if _, err := u.storeRepo.FindByUserID(ctx, userID); err == nil {
		return model.Store{}, NewHTTPError(http.StatusConflict, "store already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ok, err := u.geocoder.IsValidAddress(ctx, in.Address)
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusBadGateway, "address verification unavailable")
	}
	if !ok {
		return model.Store{}, NewHTTPError(http.StatusBadRequest, "invalid address")
	}

	store := model.Store{
		UserID:            userID,
		Name:              strings.TrimSpace(in.Name),
		PhoneNumber:       in.PhoneNumber,
		Introduce:         in.Introduce,
		Address:           in.Address,
		AvatarURL:         in.AvatarURL,
		BankName:          in.BankName,
		BankAccountName:   in.BankAccountName,
		BankAccountNumber: in.BankAccountNumber,
	}

	created, err := u.storeRepo.Create(ctx, store)
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

type UpdateStoreInput struct {
	Name              *string
	PhoneNumber       *string
	Introduce         *string
	Address           *string
	AvatarURL         *string
	BankName          *string
	BankAccountName   *string
	BankAccountNumber *string
}

func (u *StoreUsecase) UpdateMyStore(ctx context.Context, userID int64, in UpdateStoreInput) (model.Store, error) {
	store, err := u.findOwnStore(ctx, userID)
	if err != nil {
		return model.Store{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" || len(*in.Name) > 45 {
			return model.Store{}, NewHTTPError(http.StatusBadRequest, "invalid name")
		}
		store.Name = strings.TrimSpace(*in.Name)
	}
	if in.PhoneNumber != nil {
		store.PhoneNumber = *in.PhoneNumber
	}
	if in.Introduce != nil {
		store.Introduce = *in.Introduce
	}
	if in.Address != nil {
		ok, err := u.geocoder.IsValidAddress(ctx, *in.Address)
		if err != nil {
			return model.Store{}, NewHTTPError(http.StatusBadGateway, "address verification unavailable")
		}
		if !ok {
			return model.Store{}, NewHTTPError(http.StatusBadRequest, "invalid address")
		}
		store.Address = *in.Address
	}
	if in.AvatarURL != nil {
		store.AvatarURL = *in.AvatarURL
	}
	if in.BankName != nil {
		store.BankName = *in.BankName
	}
	if in.BankAccountName != nil {
		store.BankAccountName = *in.BankAccountName
	}
	if in.BankAccountNumber != nil {
		store.BankAccountNumber = *in.BankAccountNumber
	}

	if err := u.storeRepo.Update(ctx, store); err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return store, nil
}

func (u *StoreUsecase) DeleteMyStore(ctx context.Context, userID int64) error {
	store, err := u.findOwnStore(ctx, userID)
	if err != nil {
		return err
	}
	if err := u.storeRepo.Delete(ctx, store.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type StoreListOutput struct {
	Items []model.Store `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *StoreUsecase) ListStores(ctx context.Context, page int, limit int, q string) (StoreListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := u.storeRepo.List(ctx, repo.StoreListQuery{Page: page, Limit: limit, Q: q})
	if err != nil {
		return StoreListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return StoreListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *StoreUsecase) GetStore(ctx context.Context, storeID int64) (model.Store, error) {
	if storeID <= 0 {
		return model.Store{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	store, err := u.storeRepo.FindByID(ctx, storeID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Store{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return store, nil
}

// ストアの公開商品一覧
func (u *StoreUsecase) ListStoreProducts(ctx context.Context, storeID int64, page int, limit int) (ProductListOutput, error) {
	if _, err := u.GetStore(ctx, storeID); err != nil {
		return ProductListOutput{}, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := u.productRepo.ListByStoreID(ctx, storeID, page, limit)
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 公開中のものだけ見せる
	public := make([]model.Product, 0, len(items))
	for _, p := range items {
		if p.Active {
			public = append(public, p)
		}
	}

	return ProductListOutput{Items: public, Total: total, Page: page, Limit: limit}, nil
}

func (u *StoreUsecase) GetMyStore(ctx context.Context, userID int64) (model.Store, error) {
	return u.findOwnStore(ctx, userID)
}

// 自ストアに入った注文の一覧
func (u *StoreUsecase) ListMyStoreOrders(ctx context.Context, userID int64, page int, limit int, statusID *int64) (OrderListOutput, error) {
	store, err := u.findOwnStore(ctx, userID)
	if err != nil {
		return OrderListOutput{}, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	orders, total, err := u.orderRepo.ListByStoreID(ctx, store.ID, repo.OrderListFilter{
		Page:     page,
		Limit:    limit,
		StatusID: statusID,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderListOutput{Items: orders, Total: total, Page: page, Limit: limit}, nil
}

type StoreOrderStatsOutput struct {
	TotalOrders      int64                   `json:"total_orders"`
	CompletedRevenue decimal.Decimal         `json:"completed_revenue"`
	ByStatus         []repo.OrderStatusCount `json:"by_status"`
}

// ステータス内訳と完了売上のダッシュボード
func (u *StoreUsecase) GetMyStoreOrderStats(ctx context.Context, userID int64) (StoreOrderStatsOutput, error) {
	store, err := u.findOwnStore(ctx, userID)
	if err != nil {
		return StoreOrderStatsOutput{}, err
	}

	byStatus, err := u.orderRepo.CountByStoreAndStatus(ctx, store.ID)
	if err != nil {
		return StoreOrderStatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	total, err := u.orderRepo.CountByStoreID(ctx, store.ID)
	if err != nil {
		return StoreOrderStatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	revenue, err := u.orderRepo.SumCompletedRevenue(ctx, store.ID)
	if err != nil {
		return StoreOrderStatsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return StoreOrderStatsOutput{
		TotalOrders:      total,
		CompletedRevenue: revenue,
		ByStatus:         byStatus,
	}, nil
}

// 出店者は自ストアの注文を任意の実在ステータスへ動かせる。
// 変更は監査ログに残す。
func (u *StoreUsecase) UpdateOrderStatus(ctx context.Context, userID int64, orderID int64, statusID int64) (model.Order, error) {
	store, err := u.findOwnStore(ctx, userID)
	if err != nil {
		return model.Order{}, err
	}
	if orderID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if _, err := u.orderStatusRepo.FindByID(ctx, statusID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "unknown status")
		}
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	order, err := u.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	// 他ストアの注文は存在ごと隠す
	if order.StoreID != store.ID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.orderRepo.UpdateStatus(ctx, orderID, statusID); err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	before, _ := json.Marshal(map[string]int64{"order_status_id": order.OrderStatusID})
	after, _ := json.Marshal(map[string]int64{"order_status_id": statusID})
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  userID,
		Action:       model.AuditActionUpdateOrderStatus,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   string(before),
		AfterJSON:    string(after),
		CreatedAt:    time.Now(),
	})

	order.OrderStatusID = statusID
	return order, nil
}

func (u *StoreUsecase) findOwnStore(ctx context.Context, userID int64) (model.Store, error) {
	if userID <= 0 {
		return model.Store{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	store, err := u.storeRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Store{}, NewHTTPError(http.StatusForbidden, "no store")
	}
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return store, nil
}
