package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	repo "ecomart/internal/repository"
)

// CartUsecase はカートの業務ロジック。
// 表示はストアごとのグループにまとめ、直近に触った商品のグループを先頭にする。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	storeRepo    repo.StoreRepository
}

// DI
func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	storeRepo repo.StoreRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		storeRepo:    storeRepo,
	}
}

type CartItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ストアごとのまとまり
type CartStoreGroup struct {
	StoreID   int64              `json:"store_id"`
	StoreName string             `json:"store_name"`
	Avatar    string             `json:"avatar"`
	Items     []CartItemResponse `json:"items"`
}

type CartResponse struct {
	Groups []CartStoreGroup `json:"groups"`
	Total  decimal.Decimal  `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int
}

// カートに追加。同一商品は数量加算。加算後の数量が在庫を超えるなら拒否。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.Active {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}

	existingQty := 0
	if item, err := u.cartItemRepo.FindByCartAndProduct(ctx, cart.ID, in.ProductID); err == nil {
		existingQty = item.Quantity
	} else if !errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if existingQty+in.Quantity > p.AvailableQuantity {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpsertByCartAndProduct(ctx, cart.ID, in.ProductID, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

type AddQuantityInput struct {
	ProductID int64
	Delta     int
}

// カート内の商品の数量をdeltaぶん動かす。カートに無ければ404。
func (u *CartUsecase) AddQuantity(ctx context.Context, userID int64, in AddQuantityInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Delta == 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item, err := u.cartItemRepo.FindByCartAndProduct(ctx, cart.ID, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not in cart")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	newQty := item.Quantity + in.Delta
	if newQty < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if newQty > p.AvailableQuantity {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, item.ID, newQty); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not in cart")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

type RemoveItemsOutput struct {
	Removed int `json:"removed"`
}

// ベストエフォートの一括削除。無かったものは黙って飛ばし、消せた件数を返す。
func (u *CartUsecase) RemoveItems(ctx context.Context, userID int64, productIDs []int64) (RemoveItemsOutput, error) {
	if userID <= 0 {
		return RemoveItemsOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(productIDs) == 0 {
		return RemoveItemsOutput{}, NewHTTPError(http.StatusBadRequest, "missing product_ids")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return RemoveItemsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	removed := 0
	for _, pid := range uniqueIDs(productIDs) {
		err := u.cartItemRepo.DeleteByCartAndProduct(ctx, cart.ID, pid)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return RemoveItemsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		removed++
	}

	return RemoveItemsOutput{Removed: removed}, nil
}

// ストアごとにグループ化したカートの中身
func (u *CartUsecase) GetMyCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// 明細はupdated_at降順で来るので、最初に現れた順にグループを並べると
// 「直近に触ったストアが先頭」になる。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	groups := make([]CartStoreGroup, 0)
	index := make(map[int64]int)
	total := decimal.Zero

	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			continue
		}
		if !p.Active {
			continue
		}

		gi, ok := index[p.StoreID]
		if !ok {
			store, err := u.storeRepo.FindByID(ctx, p.StoreID)
			if err != nil {
				continue
			}
			groups = append(groups, CartStoreGroup{
				StoreID:   store.ID,
				StoreName: store.Name,
				Avatar:    store.AvatarURL,
				Items:     []CartItemResponse{},
			})
			gi = len(groups) - 1
			index[p.StoreID] = gi
		}

		groups[gi].Items = append(groups[gi].Items, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
			UpdatedAt: it.UpdatedAt,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	return CartResponse{Groups: groups, Total: total}, nil
}
