package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ecomart/internal/domain/model"
	repo "ecomart/internal/repository"
)

type cartFixture struct {
	uc           *CartUsecase
	cartRepo     *cartRepoMock
	cartItemRepo *cartItemRepoMock
	productRepo  *productRepoMock
	storeRepo    *storeRepoMock
}

func newCartFixture() *cartFixture {
	f := &cartFixture{
		cartRepo:     new(cartRepoMock),
		cartItemRepo: new(cartItemRepoMock),
		productRepo:  new(productRepoMock),
		storeRepo:    new(storeRepoMock),
	}
	f.uc = NewCartUsecase(f.cartRepo, f.cartItemRepo, f.productRepo, f.storeRepo)
	return f
}

func TestCartUsecase_AddToCart_Success(t *testing.T) {
	f := newCartFixture()
	f.cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 77, UserID: 7}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, StoreID: 5, Name: "Used Lamp", Active: true,
		AvailableQuantity: 5, Price: decimal.NewFromInt(50000),
	}, nil)
	// 既存数量1 + 追加2 = 3 ≤ 在庫5
	f.cartItemRepo.On("FindByCartAndProduct", mock.Anything, int64(77), int64(1)).
		Return(model.CartItem{ID: 10, CartID: 77, ProductID: 1, Quantity: 1}, nil)
	f.cartItemRepo.On("UpsertByCartAndProduct", mock.Anything, int64(77), int64(1), 2).Return(nil)

	f.cartItemRepo.On("ListByCartID", mock.Anything, int64(77)).
		Return([]model.CartItem{{ID: 10, CartID: 77, ProductID: 1, Quantity: 3}}, nil)
	f.storeRepo.On("FindByID", mock.Anything, int64(5)).
		Return(model.Store{ID: 5, Name: "Green Corner"}, nil)

	out, err := f.uc.AddToCart(context.Background(), 7, AddCartInput{ProductID: 1, Quantity: 2})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Groups))
	assert.Equal(t, "Green Corner", out.Groups[0].StoreName)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(150000)))

	f.cartItemRepo.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_StockExceeded(t *testing.T) {
	f := newCartFixture()
	f.cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 77}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, Active: true, AvailableQuantity: 5, Price: decimal.NewFromInt(100),
	}, nil)
	f.cartItemRepo.On("FindByCartAndProduct", mock.Anything, int64(77), int64(1)).
		Return(model.CartItem{ID: 10, Quantity: 4}, nil)

	_, err := f.uc.AddToCart(context.Background(), 7, AddCartInput{ProductID: 1, Quantity: 2})
	assertErrContains(t, err, "stock exceeded")
	f.cartItemRepo.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	f := newCartFixture()
	f.cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 77}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, Active: false, AvailableQuantity: 5,
	}, nil)

	_, err := f.uc.AddToCart(context.Background(), 7, AddCartInput{ProductID: 1, Quantity: 1})
	assertErrContains(t, err, "invalid product")
}

func TestCartUsecase_AddQuantity_NotInCart(t *testing.T) {
	f := newCartFixture()
	f.cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 77}, nil)
	f.cartItemRepo.On("FindByCartAndProduct", mock.Anything, int64(77), int64(1)).
		Return(model.CartItem{}, repo.ErrNotFound)

	_, err := f.uc.AddQuantity(context.Background(), 7, AddQuantityInput{ProductID: 1, Delta: 1})
	assertErrContains(t, err, "not in cart")
}

func TestCartUsecase_AddQuantity_CannotDropBelowOne(t *testing.T) {
	f := newCartFixture()
	f.cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 77}, nil)
	f.cartItemRepo.On("FindByCartAndProduct", mock.Anything, int64(77), int64(1)).
		Return(model.CartItem{ID: 10, Quantity: 1}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, Active: true, AvailableQuantity: 5,
	}, nil)

	_, err := f.uc.AddQuantity(context.Background(), 7, AddQuantityInput{ProductID: 1, Delta: -1})
	assertErrContains(t, err, "invalid quantity")
	f.cartItemRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

// 明細はupdated_at降順なので、直近に触ったストアのグループが先頭に来る
func TestCartUsecase_GetMyCart_GroupsByStoreInRecencyOrder(t *testing.T) {
	f := newCartFixture()
	now := time.Now()

	f.cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 77}, nil)
	f.cartItemRepo.On("ListByCartID", mock.Anything, int64(77)).Return([]model.CartItem{
		{ID: 3, ProductID: 2, Quantity: 1, UpdatedAt: now},
		{ID: 1, ProductID: 1, Quantity: 2, UpdatedAt: now.Add(-time.Hour)},
		{ID: 2, ProductID: 3, Quantity: 1, UpdatedAt: now.Add(-2 * time.Hour)},
	}, nil)

	f.productRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Product{
		ID: 2, StoreID: 6, Name: "Old Chair", Active: true, Price: decimal.NewFromInt(30000),
	}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, StoreID: 5, Name: "Used Lamp", Active: true, Price: decimal.NewFromInt(50000),
	}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(3)).Return(model.Product{
		ID: 3, StoreID: 6, Name: "Book Shelf", Active: true, Price: decimal.NewFromInt(20000),
	}, nil)
	f.storeRepo.On("FindByID", mock.Anything, int64(6)).Return(model.Store{ID: 6, Name: "Second Life"}, nil)
	f.storeRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Store{ID: 5, Name: "Green Corner"}, nil)

	out, err := f.uc.GetMyCart(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(out.Groups))
	assert.Equal(t, "Second Life", out.Groups[0].StoreName)
	assert.Equal(t, 2, len(out.Groups[0].Items))
	assert.Equal(t, "Green Corner", out.Groups[1].StoreName)
	// 30000 + 2*50000 + 20000
	assert.True(t, out.Total.Equal(decimal.NewFromInt(150000)))
}

// 非公開になった商品は表示からも合計からも外れる
func TestCartUsecase_GetMyCart_SkipsInactiveProducts(t *testing.T) {
	f := newCartFixture()
	f.cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 77}, nil)
	f.cartItemRepo.On("ListByCartID", mock.Anything, int64(77)).Return([]model.CartItem{
		{ID: 1, ProductID: 1, Quantity: 1},
		{ID: 2, ProductID: 2, Quantity: 1},
	}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, StoreID: 5, Active: false, Price: decimal.NewFromInt(99999),
	}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Product{
		ID: 2, StoreID: 5, Active: true, Price: decimal.NewFromInt(10000),
	}, nil)
	f.storeRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Store{ID: 5, Name: "Green Corner"}, nil)

	out, err := f.uc.GetMyCart(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Groups))
	assert.Equal(t, 1, len(out.Groups[0].Items))
	assert.True(t, out.Total.Equal(decimal.NewFromInt(10000)))
}

func TestCartUsecase_RemoveItems_SkipsMissing(t *testing.T) {
	f := newCartFixture()
	f.cartRepo.On("GetOrCreateByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 77}, nil)
	f.cartItemRepo.On("DeleteByCartAndProduct", mock.Anything, int64(77), int64(1)).Return(nil)
	f.cartItemRepo.On("DeleteByCartAndProduct", mock.Anything, int64(77), int64(2)).Return(repo.ErrNotFound)

	out, err := f.uc.RemoveItems(context.Background(), 7, []int64{1, 2})
	assert.NoError(t, err)
	assert.Equal(t, 1, out.Removed)
}
