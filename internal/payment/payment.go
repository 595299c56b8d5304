package payment

import (
	"context"
	"errors"
	"time"
)

var (
	// webhookの署名が一致しない
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// 決済リンクの作成依頼
type LinkRequest struct {
	// 決済側に渡す数値の注文コード（注文とは別採番）
	OrderCode    int64
	Amount       int64
	Description  string
	BuyerName    string
	BuyerEmail   string
	BuyerPhone   string
	BuyerAddress string
	ReturnURL    string
	CancelURL    string
	ExpiredAt    time.Time
}

// 決済リンクの作成結果
type Link struct {
	OrderCode   int64
	CheckoutURL string
	QRCode      string
	Status      string
}

// webhookの検証済みデータ
type WebhookEvent struct {
	OrderCode     int64
	Amount        int64
	Reference     string
	TransactionAt time.Time
	Success       bool
}

// 決済ゲートウェイの窓口。
type Gateway interface {
	CreatePaymentLink(ctx context.Context, req LinkRequest) (Link, error)
	// 署名を検証してイベントに展開する。不一致ならErrInvalidSignature。
	VerifyWebhook(ctx context.Context, body []byte) (WebhookEvent, error)
}
