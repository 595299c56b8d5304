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
	"ecomart/internal/payment"
)

type paymentFixture struct {
	uc           *PaymentUsecase
	txManager    *txManagerStub
	tx           *txReposStub
	orderRepo    *orderRepoMock
	userRepo     *userRepoMock
	deliveryRepo *deliveryRepoMock
	gateway      *gatewayMock
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		txManager:    &txManagerStub{repos: newTxReposStub()},
		orderRepo:    new(orderRepoMock),
		userRepo:     new(userRepoMock),
		deliveryRepo: new(deliveryRepoMock),
		gateway:      new(gatewayMock),
	}
	f.tx = f.txManager.repos
	f.uc = NewPaymentUsecase(
		f.txManager, f.orderRepo, f.userRepo, f.deliveryRepo, f.gateway,
		"https://ecomart.example/payment/success",
		"https://ecomart.example/payment/cancel",
	)
	return f
}

func TestPaymentUsecase_CreatePaymentLink_Success(t *testing.T) {
	f := newPaymentFixture()
	deliveryID := int64(3)
	f.orderRepo.On("FindByID", mock.Anything, int64(42)).Return(model.Order{
		ID: 42, UserID: 7, TotalCost: decimal.NewFromInt(120000),
		DeliveryInfoID: &deliveryID,
	}, nil)
	f.userRepo.On("FindByID", mock.Anything, int64(7)).
		Return(&model.User{ID: 7, FirstName: "An", LastName: "Tran", Email: "buyer@example.com"}, nil)
	f.deliveryRepo.On("FindByID", mock.Anything, int64(3)).
		Return(model.DeliveryInformation{ID: 3, PhoneNumber: "0912345678", Address: "12 Nguyen Hue"}, nil)

	f.gateway.On("CreatePaymentLink", mock.Anything, mock.MatchedBy(func(req payment.LinkRequest) bool {
		return req.OrderCode == 42 &&
			req.Amount == 120000 &&
			req.Description == "DH42-EcoMart" &&
			req.BuyerPhone == "0912345678" &&
			strings.HasSuffix(req.ReturnURL, "/42") &&
			strings.HasSuffix(req.CancelURL, "/42") &&
			time.Until(req.ExpiredAt) <= 15*time.Minute
	})).Return(payment.Link{
		OrderCode:   42,
		CheckoutURL: "https://pay.payos.vn/web/abc",
		QRCode:      "000201qr",
		Status:      "PENDING",
	}, nil)

	// リンク発行時点ではis_paidは動かない
	f.orderRepo.On("UpdatePayment", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return !o.IsPaid && o.PayOSOrderCode != nil && *o.PayOSOrderCode == 42 &&
			o.PayOSPaymentURL == "https://pay.payos.vn/web/abc" &&
			o.PayOSStatus == "PENDING"
	})).Return(nil)

	out, err := f.uc.CreatePaymentLink(context.Background(), 7, 42)
	assert.NoError(t, err)
	assert.Equal(t, "https://pay.payos.vn/web/abc", out.CheckoutURL)
	assert.Equal(t, int64(42), out.OrderCode)

	f.gateway.AssertExpectations(t)
	f.orderRepo.AssertExpectations(t)
}

func TestPaymentUsecase_CreatePaymentLink_AlreadyPaid(t *testing.T) {
	f := newPaymentFixture()
	f.orderRepo.On("FindByID", mock.Anything, int64(42)).Return(model.Order{
		ID: 42, UserID: 7, IsPaid: true, TotalCost: decimal.NewFromInt(120000),
	}, nil)

	_, err := f.uc.CreatePaymentLink(context.Background(), 7, 42)
	assertErrContains(t, err, "already paid")
	f.gateway.AssertNotCalled(t, "CreatePaymentLink", mock.Anything, mock.Anything)
}

func TestPaymentUsecase_CreatePaymentLink_InvalidAmount(t *testing.T) {
	f := newPaymentFixture()
	f.orderRepo.On("FindByID", mock.Anything, int64(42)).Return(model.Order{
		ID: 42, UserID: 7, TotalCost: decimal.Zero,
	}, nil)

	_, err := f.uc.CreatePaymentLink(context.Background(), 7, 42)
	assertErrContains(t, err, "invalid amount")
}

// 入金イベントで手数料10%の内訳行が切られる
func TestPaymentUsecase_HandleWebhook_PaidWritesCommission(t *testing.T) {
	f := newPaymentFixture()
	body := []byte(`{"code":"00"}`)
	paidAt := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	payosCode := int64(42)

	f.gateway.On("VerifyWebhook", mock.Anything, body).Return(payment.WebhookEvent{
		OrderCode:     42,
		Amount:        120000,
		Reference:     "FT2025",
		TransactionAt: paidAt,
		Success:       true,
	}, nil)
	f.orderRepo.On("FindByPayOSOrderCode", mock.Anything, int64(42)).Return(model.Order{
		ID: 9, UserID: 7, TotalCost: decimal.NewFromInt(120000), PayOSOrderCode: &payosCode,
	}, nil)

	f.tx.orders.On("UpdatePayment", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.IsPaid && o.PayOSStatus == "PAID" && o.PayOSTransactionID == "FT2025" &&
			o.PaidAt != nil && o.PaidAt.Equal(paidAt)
	})).Return(nil)
	f.tx.transactions.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(tr model.Transaction) bool {
		return tr.OrderID == 9 &&
			tr.PlatformFee.Equal(decimal.NewFromInt(12000)) &&
			tr.StoreRevenue.Equal(decimal.NewFromInt(108000)) &&
			tr.TxnRef == "FT2025"
	})).Return(nil)

	err := f.uc.HandleWebhook(context.Background(), body)
	assert.NoError(t, err)

	f.tx.orders.AssertExpectations(t)
	f.tx.transactions.AssertExpectations(t)
}

// 再配信されても内訳行は増えない（既に支払い済みなら書かない）
func TestPaymentUsecase_HandleWebhook_Redelivery(t *testing.T) {
	f := newPaymentFixture()
	body := []byte(`{"code":"00"}`)
	payosCode := int64(42)

	f.gateway.On("VerifyWebhook", mock.Anything, body).Return(payment.WebhookEvent{
		OrderCode: 42, Success: true, TransactionAt: time.Now(),
	}, nil)
	f.orderRepo.On("FindByPayOSOrderCode", mock.Anything, int64(42)).Return(model.Order{
		ID: 9, UserID: 7, IsPaid: true, TotalCost: decimal.NewFromInt(120000), PayOSOrderCode: &payosCode,
	}, nil)
	f.tx.orders.On("UpdatePayment", mock.Anything, mock.Anything).Return(nil)

	err := f.uc.HandleWebhook(context.Background(), body)
	assert.NoError(t, err)
	f.tx.transactions.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestPaymentUsecase_HandleWebhook_InvalidSignature(t *testing.T) {
	f := newPaymentFixture()
	body := []byte(`{"bad":"payload"}`)
	f.gateway.On("VerifyWebhook", mock.Anything, body).
		Return(payment.WebhookEvent{}, payment.ErrInvalidSignature)

	err := f.uc.HandleWebhook(context.Background(), body)
	assertErrContains(t, err, "invalid signature")
	f.orderRepo.AssertNotCalled(t, "FindByPayOSOrderCode", mock.Anything, mock.Anything)
}

// キャンセルイベントはステータスだけ更新して内訳は書かない
func TestPaymentUsecase_HandleWebhook_Cancelled(t *testing.T) {
	f := newPaymentFixture()
	body := []byte(`{"code":"01"}`)
	payosCode := int64(42)

	f.gateway.On("VerifyWebhook", mock.Anything, body).Return(payment.WebhookEvent{
		OrderCode: 42, Success: false,
	}, nil)
	f.orderRepo.On("FindByPayOSOrderCode", mock.Anything, int64(42)).Return(model.Order{
		ID: 9, UserID: 7, TotalCost: decimal.NewFromInt(120000), PayOSOrderCode: &payosCode,
	}, nil)
	f.tx.orders.On("UpdatePayment", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return !o.IsPaid && o.PayOSStatus == "CANCELLED"
	})).Return(nil)

	err := f.uc.HandleWebhook(context.Background(), body)
	assert.NoError(t, err)
	f.tx.transactions.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestPaymentUsecase_UpdatePaymentStatus_ForeignOrderHidden(t *testing.T) {
	f := newPaymentFixture()
	f.orderRepo.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, UserID: 99}, nil)

	_, err := f.uc.UpdatePaymentStatus(context.Background(), 7, 42, UpdatePaymentStatusInput{})
	assertErrContains(t, err, "not found")
}
