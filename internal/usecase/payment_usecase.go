package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"ecomart/internal/domain/model"
	"ecomart/internal/payment"
	repo "ecomart/internal/repository"
)

// プラットフォーム手数料は10%
var platformFeeRate = decimal.NewFromFloat(0.10)

const paymentLinkExpiry = 15 * time.Minute

// PayOSとの橋渡し。決済リンクの発行、呼び出し側/webhookからの
// 決済状態の冪等マージ、入金時の手数料内訳の記録を担う。
type PaymentUsecase struct {
	txManager    repo.TransactionManager
	orderRepo    repo.OrderRepository
	userRepo     repo.UserRepository
	deliveryRepo repo.DeliveryInfoRepository
	gateway      payment.Gateway
	returnURL    string
	cancelURL    string
}

// DI
func NewPaymentUsecase(
	txManager repo.TransactionManager,
	orderRepo repo.OrderRepository,
	userRepo repo.UserRepository,
	deliveryRepo repo.DeliveryInfoRepository,
	gateway payment.Gateway,
	returnURL string,
	cancelURL string,
) *PaymentUsecase {
	return &PaymentUsecase{
		txManager:    txManager,
		orderRepo:    orderRepo,
		userRepo:     userRepo,
		deliveryRepo: deliveryRepo,
		gateway:      gateway,
		returnURL:    returnURL,
		cancelURL:    cancelURL,
	}
}

type PaymentLinkOutput struct {
	CheckoutURL string `json:"checkout_url"`
	QRCode      string `json:"qr_code"`
	OrderCode   int64  `json:"order_code"`
}

// 決済リンク発行。支払い済みと金額0以下は拒否。is_paidはここでは動かさない。
func (u *PaymentUsecase) CreatePaymentLink(ctx context.Context, userID int64, orderID int64) (PaymentLinkOutput, error) {
	order, err := u.findOwnOrder(ctx, userID, orderID)
	if err != nil {
		return PaymentLinkOutput{}, err
	}

	if order.IsPaid {
		return PaymentLinkOutput{}, NewHTTPError(http.StatusBadRequest, "already paid")
	}
	if order.TotalCost.LessThanOrEqual(decimal.Zero) {
		return PaymentLinkOutput{}, NewHTTPError(http.StatusBadRequest, "invalid amount")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return PaymentLinkOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	buyerPhone := ""
	buyerAddress := ""
	if order.DeliveryInfoID != nil {
		if d, err := u.deliveryRepo.FindByID(ctx, *order.DeliveryInfoID); err == nil {
			buyerPhone = d.PhoneNumber
			buyerAddress = d.Address
		}
	}

	link, err := u.gateway.CreatePaymentLink(ctx, payment.LinkRequest{
		OrderCode:    order.ID,
		Amount:       order.TotalCost.IntPart(),
		Description:  fmt.Sprintf("DH%d-EcoMart", order.ID),
		BuyerName:    user.FirstName + " " + user.LastName,
		BuyerEmail:   user.Email,
		BuyerPhone:   buyerPhone,
		BuyerAddress: buyerAddress,
		ReturnURL:    fmt.Sprintf("%s/%d", u.returnURL, order.ID),
		CancelURL:    fmt.Sprintf("%s/%d", u.cancelURL, order.ID),
		ExpiredAt:    time.Now().Add(paymentLinkExpiry),
	})
	if err != nil {
		return PaymentLinkOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider unavailable")
	}

	order.PayOSOrderCode = &link.OrderCode
	order.PayOSPaymentURL = link.CheckoutURL
	order.PayOSQRCode = link.QRCode
	order.PayOSStatus = link.Status
	if err := u.orderRepo.UpdatePayment(ctx, order); err != nil {
		return PaymentLinkOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return PaymentLinkOutput{
		CheckoutURL: link.CheckoutURL,
		QRCode:      link.QRCode,
		OrderCode:   link.OrderCode,
	}, nil
}

type UpdatePaymentStatusInput struct {
	IsPaid        *bool
	PaidAt        *time.Time
	Status        *string
	TransactionID *string
	OrderCode     *int64
}

// 呼び出し側からの冪等マージ
func (u *PaymentUsecase) UpdatePaymentStatus(ctx context.Context, userID int64, orderID int64, in UpdatePaymentStatusInput) (model.Order, error) {
	order, err := u.findOwnOrder(ctx, userID, orderID)
	if err != nil {
		return model.Order{}, err
	}

	wasPaid := order.IsPaid

	if in.IsPaid != nil {
		order.IsPaid = *in.IsPaid
	}
	if in.PaidAt != nil {
		order.PaidAt = in.PaidAt
		order.PayOSPaidAt = in.PaidAt
	}
	if in.Status != nil {
		order.PayOSStatus = *in.Status
	}
	if in.TransactionID != nil {
		order.PayOSTransactionID = *in.TransactionID
	}
	if in.OrderCode != nil {
		order.PayOSOrderCode = in.OrderCode
	}

	if err := u.mergePayment(ctx, order, wasPaid); err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// webhookからの冪等マージ。注文は決済側の数値コードで引く。
func (u *PaymentUsecase) HandleWebhook(ctx context.Context, body []byte) error {
	event, err := u.gateway.VerifyWebhook(ctx, body)
	if errors.Is(err, payment.ErrInvalidSignature) {
		return NewHTTPError(http.StatusBadRequest, "invalid signature")
	}
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	order, err := u.orderRepo.FindByPayOSOrderCode(ctx, event.OrderCode)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	wasPaid := order.IsPaid

	if event.Success {
		order.IsPaid = true
		order.PaidAt = &event.TransactionAt
		order.PayOSPaidAt = &event.TransactionAt
		order.PayOSStatus = "PAID"
	} else {
		order.PayOSStatus = "CANCELLED"
	}
	if event.Reference != "" {
		order.PayOSTransactionID = event.Reference
	}

	return u.mergePayment(ctx, order, wasPaid)
}

// 未払い→支払い済みの遷移でだけ手数料内訳を書く。
// Transaction行は(order_id)で冪等なので再配信にも耐える。
func (u *PaymentUsecase) mergePayment(ctx context.Context, order model.Order, wasPaid bool) error {
	err := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().UpdatePayment(ctx, order); err != nil {
			return err
		}

		if order.IsPaid && !wasPaid {
			fee := order.TotalCost.Mul(platformFeeRate).Round(2)
			paidAt := time.Now()
			if order.PaidAt != nil {
				paidAt = *order.PaidAt
			}
			t := model.Transaction{
				OrderID:      order.ID,
				TxnRef:       order.PayOSTransactionID,
				Amount:       order.TotalCost,
				PayDate:      paidAt,
				PlatformFee:  fee,
				StoreRevenue: order.TotalCost.Sub(fee),
			}
			if err := r.Transactions().CreateIfAbsent(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *PaymentUsecase) findOwnOrder(ctx context.Context, userID int64, orderID int64) (model.Order, error) {
	if userID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := u.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if order.OwnerID() != userID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return order, nil
}
