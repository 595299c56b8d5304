package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ecomart/internal/domain/model"
)

type orderFixture struct {
	uc           *OrderUsecase
	txManager    *txManagerStub
	tx           *txReposStub
	orderRepo    *orderRepoMock
	itemRepo     *orderItemRepoMock
	productRepo  *productRepoMock
	storeRepo    *storeRepoMock
	userRepo     *userRepoMock
	voucherRepo  *voucherRepoMock
	deliveryRepo *deliveryRepoMock
	cartRepo     *cartRepoMock
	geocoder     *geocoderMock
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		txManager:    &txManagerStub{repos: newTxReposStub()},
		orderRepo:    new(orderRepoMock),
		itemRepo:     new(orderItemRepoMock),
		productRepo:  new(productRepoMock),
		storeRepo:    new(storeRepoMock),
		userRepo:     new(userRepoMock),
		voucherRepo:  new(voucherRepoMock),
		deliveryRepo: new(deliveryRepoMock),
		cartRepo:     new(cartRepoMock),
		geocoder:     new(geocoderMock),
	}
	f.tx = f.txManager.repos
	f.uc = NewOrderUsecase(
		f.txManager, f.orderRepo, f.itemRepo, f.productRepo, f.storeRepo,
		f.userRepo, f.voucherRepo, f.deliveryRepo, f.cartRepo, f.geocoder,
	)
	return f
}

// よく使う舞台装置。userID=7の顧客がstoreID=5の商品1を買う。
func (f *orderFixture) arrangeHappyPath(stock int) {
	f.deliveryRepo.On("FindByID", mock.Anything, int64(3)).
		Return(model.DeliveryInformation{ID: 3, UserID: 7, Address: "12 Nguyen Hue, District 1"}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{
			ID: 1, StoreID: 5, Name: "Used Lamp", Active: true,
			AvailableQuantity: stock, Price: decimal.NewFromInt(50000),
		}, nil)
	f.storeRepo.On("FindByID", mock.Anything, int64(5)).
		Return(model.Store{ID: 5, UserID: 9, Name: "Green Corner", Address: "Go Vap, HCMC"}, nil)
	f.geocoder.On("RouteDistanceKm", mock.Anything, "Go Vap, HCMC", "12 Nguyen Hue, District 1").
		Return(12.0, nil)
	f.userRepo.On("FindByID", mock.Anything, int64(7)).
		Return(&model.User{ID: 7, Email: "buyer@example.com", FirstName: "An", LastName: "Tran"}, nil)
	f.userRepo.On("FindByID", mock.Anything, int64(9)).
		Return(&model.User{ID: 9, Email: "seller@example.com"}, nil)
}

func TestOrderUsecase_CreateOrder_Success(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.arrangeHappyPath(10)

	f.tx.orders.On("ExistsByOrderCode", mock.Anything, mock.MatchedBy(func(code string) bool {
		return strings.HasPrefix(code, "ERM")
	})).Return(false, nil)
	f.tx.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), 2).Return(true, nil)

	// 小計 2*50000 + 配送料 20000（12km）
	f.tx.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalCost.Equal(decimal.NewFromInt(120000)) &&
			o.ShipFee.Equal(decimal.NewFromInt(20000)) &&
			o.OrderStatusID == model.OrderStatusPending &&
			o.PaymentMethod == model.PaymentMethodCash &&
			strings.HasPrefix(o.OrderCode, "ERM")
	})).Return(model.Order{ID: 42, OrderCode: "ERM1700000000", UserID: 7, StoreID: 5,
		OrderStatusID: model.OrderStatusPending, TotalCost: decimal.NewFromInt(120000)}, nil)
	f.tx.orderItems.On("CreateBulk", mock.Anything, int64(42), mock.Anything).Return(nil)

	f.cartRepo.On("FindByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 77, UserID: 7}, nil)
	f.tx.cartItems.On("DeleteByCartAndProducts", mock.Anything, int64(77), []int64{1}).Return(nil)

	// 顧客向けとストア向けの2通がoutboxに積まれる
	f.tx.outbox.On("Enqueue", mock.Anything, mock.MatchedBy(func(m model.EmailOutbox) bool {
		return m.Recipient == "buyer@example.com"
	})).Return(nil).Once()
	f.tx.outbox.On("Enqueue", mock.Anything, mock.MatchedBy(func(m model.EmailOutbox) bool {
		return m.Recipient == "seller@example.com"
	})).Return(nil).Once()

	out, err := f.uc.CreateOrder(ctx, 7, CreateOrderInput{
		DeliveryInfoID: 3,
		Items:          []OrderItemInput{{ProductID: 1, Quantity: 2}},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)
	assert.True(t, out.TotalCost.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, 1, len(out.Items))

	f.tx.orders.AssertExpectations(t)
	f.tx.inventory.AssertExpectations(t)
	f.tx.outbox.AssertExpectations(t)
}

func TestOrderUsecase_CreateOrder_EmptyOrder(t *testing.T) {
	f := newOrderFixture()
	f.deliveryRepo.On("FindByID", mock.Anything, int64(3)).
		Return(model.DeliveryInformation{ID: 3, UserID: 7, Address: "a"}, nil)

	_, err := f.uc.CreateOrder(context.Background(), 7, CreateOrderInput{DeliveryInfoID: 3})
	assertErrContains(t, err, "empty order")
	assert.False(t, f.txManager.called)
}

func TestOrderUsecase_CreateOrder_ForeignDeliveryAddress(t *testing.T) {
	f := newOrderFixture()
	// 他人の住所
	f.deliveryRepo.On("FindByID", mock.Anything, int64(3)).
		Return(model.DeliveryInformation{ID: 3, UserID: 99, Address: "a"}, nil)

	_, err := f.uc.CreateOrder(context.Background(), 7, CreateOrderInput{
		DeliveryInfoID: 3,
		Items:          []OrderItemInput{{ProductID: 1, Quantity: 1}},
	})
	assertErrContains(t, err, "invalid address")
}

func TestOrderUsecase_CreateOrder_MultipleStores(t *testing.T) {
	f := newOrderFixture()
	f.deliveryRepo.On("FindByID", mock.Anything, int64(3)).
		Return(model.DeliveryInformation{ID: 3, UserID: 7, Address: "a"}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, StoreID: 5, AvailableQuantity: 9, Price: decimal.NewFromInt(100)}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(2)).
		Return(model.Product{ID: 2, StoreID: 6, AvailableQuantity: 9, Price: decimal.NewFromInt(100)}, nil)

	_, err := f.uc.CreateOrder(context.Background(), 7, CreateOrderInput{
		DeliveryInfoID: 3,
		Items: []OrderItemInput{
			{ProductID: 1, Quantity: 1},
			{ProductID: 2, Quantity: 1},
		},
	})
	assertErrContains(t, err, "items span multiple stores")
	assert.False(t, f.txManager.called)
}

func TestOrderUsecase_CreateOrder_InsufficientStock_PreCheck(t *testing.T) {
	f := newOrderFixture()
	f.deliveryRepo.On("FindByID", mock.Anything, int64(3)).
		Return(model.DeliveryInformation{ID: 3, UserID: 7, Address: "a"}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, StoreID: 5, Name: "Used Lamp", AvailableQuantity: 3, Price: decimal.NewFromInt(100)}, nil)

	_, err := f.uc.CreateOrder(context.Background(), 7, CreateOrderInput{
		DeliveryInfoID: 3,
		Items:          []OrderItemInput{{ProductID: 1, Quantity: 5}},
	})
	assertErrContains(t, err, "insufficient stock: Used Lamp")
	assert.False(t, f.txManager.called)
}

// 事前チェックを通っても、確定時の条件付きUPDATEで負けたら巻き戻る
func TestOrderUsecase_CreateOrder_InsufficientStock_InTx(t *testing.T) {
	f := newOrderFixture()
	f.arrangeHappyPath(2)

	f.tx.orders.On("ExistsByOrderCode", mock.Anything, mock.Anything).Return(false, nil)
	f.tx.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), 2).Return(false, nil)

	_, err := f.uc.CreateOrder(context.Background(), 7, CreateOrderInput{
		DeliveryInfoID: 3,
		Items:          []OrderItemInput{{ProductID: 1, Quantity: 2}},
	})
	assertErrContains(t, err, "insufficient stock: Used Lamp")
	f.tx.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_CreateOrder_VoucherExhausted(t *testing.T) {
	f := newOrderFixture()
	f.arrangeHappyPath(10)

	// used_count == quantity は IsValid が落とす
	voucherID := int64(11)
	f.voucherRepo.On("FindByID", mock.Anything, voucherID).Return(model.Voucher{
		ID: 11, Code: "SAVE10", DiscountPercent: 10, Quantity: 5, UsedCount: 5,
		StartDate:  time.Now().Add(-time.Hour),
		ExpiryDate: time.Now().Add(time.Hour),
		IsActive:   true,
	}, nil)

	_, err := f.uc.CreateOrder(context.Background(), 7, CreateOrderInput{
		DeliveryInfoID: 3,
		Items:          []OrderItemInput{{ProductID: 1, Quantity: 2}},
		VoucherID:      &voucherID,
	})
	assertErrContains(t, err, "voucher invalid")
	assert.False(t, f.txManager.called)
}

func TestOrderUsecase_CreateOrder_VoucherBelowMinimum(t *testing.T) {
	f := newOrderFixture()
	f.arrangeHappyPath(10)

	voucherID := int64(11)
	f.voucherRepo.On("FindByID", mock.Anything, voucherID).Return(model.Voucher{
		ID: 11, DiscountPercent: 10, Quantity: 5, UsedCount: 0,
		MinOrderValue: decimal.NewFromInt(500000),
		StartDate:     time.Now().Add(-time.Hour),
		ExpiryDate:    time.Now().Add(time.Hour),
		IsActive:      true,
	}, nil)

	_, err := f.uc.CreateOrder(context.Background(), 7, CreateOrderInput{
		DeliveryInfoID: 3,
		Items:          []OrderItemInput{{ProductID: 1, Quantity: 2}},
		VoucherID:      &voucherID,
	})
	assertErrContains(t, err, "order below voucher minimum")
}

// 割引は小計＋配送料の合算に掛かる: (100000+20000) * 0.9 = 108000
func TestOrderUsecase_CreateOrder_VoucherDiscountApplied(t *testing.T) {
	f := newOrderFixture()
	f.arrangeHappyPath(10)

	voucherID := int64(11)
	f.voucherRepo.On("FindByID", mock.Anything, voucherID).Return(model.Voucher{
		ID: 11, DiscountPercent: 10, Quantity: 5, UsedCount: 1,
		MinOrderValue: decimal.NewFromInt(100000),
		StartDate:     time.Now().Add(-time.Hour),
		ExpiryDate:    time.Now().Add(time.Hour),
		IsActive:      true,
	}, nil)

	f.tx.orders.On("ExistsByOrderCode", mock.Anything, mock.Anything).Return(false, nil)
	f.tx.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), 2).Return(true, nil)
	f.tx.vouchers.On("IncrementUsedCountIfAvailable", mock.Anything, int64(11)).Return(true, nil)
	f.tx.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalCost.Equal(decimal.NewFromInt(108000)) &&
			o.VoucherID != nil && *o.VoucherID == 11
	})).Return(model.Order{ID: 43, TotalCost: decimal.NewFromInt(108000)}, nil)
	f.tx.orderItems.On("CreateBulk", mock.Anything, int64(43), mock.Anything).Return(nil)
	f.cartRepo.On("FindByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 77}, nil)
	f.tx.cartItems.On("DeleteByCartAndProducts", mock.Anything, int64(77), []int64{1}).Return(nil)
	f.tx.outbox.On("Enqueue", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.CreateOrder(context.Background(), 7, CreateOrderInput{
		DeliveryInfoID: 3,
		Items:          []OrderItemInput{{ProductID: 1, Quantity: 2}},
		VoucherID:      &voucherID,
	})
	assert.NoError(t, err)
	assert.True(t, out.TotalCost.Equal(decimal.NewFromInt(108000)))

	f.tx.orders.AssertExpectations(t)
	f.tx.vouchers.AssertExpectations(t)
}

// 最後の1枚を取り合って負けた場合もトランザクションごと巻き戻る
func TestOrderUsecase_CreateOrder_VoucherRace_InTx(t *testing.T) {
	f := newOrderFixture()
	f.arrangeHappyPath(10)

	voucherID := int64(11)
	f.voucherRepo.On("FindByID", mock.Anything, voucherID).Return(model.Voucher{
		ID: 11, DiscountPercent: 10, Quantity: 5, UsedCount: 4,
		StartDate:  time.Now().Add(-time.Hour),
		ExpiryDate: time.Now().Add(time.Hour),
		IsActive:   true,
	}, nil)

	f.tx.orders.On("ExistsByOrderCode", mock.Anything, mock.Anything).Return(false, nil)
	f.tx.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), 2).Return(true, nil)
	f.tx.vouchers.On("IncrementUsedCountIfAvailable", mock.Anything, int64(11)).Return(false, nil)

	_, err := f.uc.CreateOrder(context.Background(), 7, CreateOrderInput{
		DeliveryInfoID: 3,
		Items:          []OrderItemInput{{ProductID: 1, Quantity: 2}},
		VoucherID:      &voucherID,
	})
	assertErrContains(t, err, "voucher invalid")
	f.tx.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCustomerTransitionAllowed(t *testing.T) {
	cases := []struct {
		name    string
		current int64
		target  int64
		want    bool
	}{
		{"pending to cancel requested", model.OrderStatusPending, model.OrderStatusCancelRequested, true},
		{"accepted to cancel requested", model.OrderStatusAccepted, model.OrderStatusCancelRequested, true},
		{"awaiting delivery to completed", model.OrderStatusAwaitingDelivery, model.OrderStatusCompleted, true},
		{"awaiting delivery cannot cancel", model.OrderStatusAwaitingDelivery, model.OrderStatusCancelRequested, false},
		{"pending cannot complete", model.OrderStatusPending, model.OrderStatusCompleted, false},
		{"completed is terminal", model.OrderStatusCompleted, model.OrderStatusCancelRequested, false},
		{"cannot move into accepted", model.OrderStatusPending, model.OrderStatusAccepted, false},
		{"returned is out of customer reach", model.OrderStatusAwaitingDelivery, model.OrderStatusReturned, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, customerTransitionAllowed(tc.current, tc.target))
		})
	}
}

func TestOrderUsecase_UpdateMyOrderStatus_Allowed(t *testing.T) {
	f := newOrderFixture()
	f.orderRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: 7, OrderStatusID: model.OrderStatusAwaitingDelivery}, nil)
	f.orderRepo.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusCompleted).Return(nil)

	out, err := f.uc.UpdateMyOrderStatus(context.Background(), 7, 42, model.OrderStatusCompleted)
	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, out.OrderStatusID)

	f.orderRepo.AssertExpectations(t)
}

func TestOrderUsecase_UpdateMyOrderStatus_IllegalTransition(t *testing.T) {
	f := newOrderFixture()
	f.orderRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: 7, OrderStatusID: model.OrderStatusPending}, nil)

	_, err := f.uc.UpdateMyOrderStatus(context.Background(), 7, 42, model.OrderStatusCompleted)
	assertErrContains(t, err, "illegal transition")
	f.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

// 他人の注文は404に倒す
func TestOrderUsecase_GetOrder_ForeignOrderHidden(t *testing.T) {
	f := newOrderFixture()
	f.orderRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: 99}, nil)

	_, err := f.uc.GetOrder(context.Background(), 7, 42)
	assertErrContains(t, err, "not found")
}

func TestOrderUsecase_QuoteShipFee(t *testing.T) {
	f := newOrderFixture()
	f.deliveryRepo.On("FindByID", mock.Anything, int64(3)).
		Return(model.DeliveryInformation{ID: 3, UserID: 7, Address: "dest"}, nil)
	f.productRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, StoreID: 5}, nil)
	f.storeRepo.On("FindByID", mock.Anything, int64(5)).
		Return(model.Store{ID: 5, Address: "origin"}, nil)
	f.geocoder.On("RouteDistanceKm", mock.Anything, "origin", "dest").Return(200.0, nil)

	out, err := f.uc.QuoteShipFee(context.Background(), 7, ShipFeeQuoteInput{DeliveryInfoID: 3, ProductID: 1})
	assert.NoError(t, err)
	assert.Equal(t, 200.0, out.DistanceKm)
	assert.True(t, out.ShipFee.Equal(decimal.NewFromInt(30000)))
}
