package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"ecomart/internal/payment"
)

const payosBaseURL = "https://api-merchant.payos.vn"

// PayOSのREST APIを叩くクライアント。
// リクエスト署名とwebhook署名はどちらもchecksum keyのHMAC-SHA256。
type PayOSClient struct {
	clientID    string
	apiKey      string
	checksumKey string
	http        *http.Client
}

// DI
func NewPayOSClient(clientID string, apiKey string, checksumKey string) *PayOSClient {
	return &PayOSClient{
		clientID:    clientID,
		apiKey:      apiKey,
		checksumKey: checksumKey,
		http:        &http.Client{Timeout: 15 * time.Second},
	}
}

type createLinkRequest struct {
	OrderCode    int64          `json:"orderCode"`
	Amount       int64          `json:"amount"`
	Description  string         `json:"description"`
	BuyerName    string         `json:"buyerName,omitempty"`
	BuyerEmail   string         `json:"buyerEmail,omitempty"`
	BuyerPhone   string         `json:"buyerPhone,omitempty"`
	BuyerAddress string         `json:"buyerAddress,omitempty"`
	Items        []itemData     `json:"items"`
	CancelURL    string         `json:"cancelUrl"`
	ReturnURL    string         `json:"returnUrl"`
	ExpiredAt    int64          `json:"expiredAt"`
	Signature    string         `json:"signature"`
}

type itemData struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

type createLinkResponse struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
	Data struct {
		OrderCode   int64  `json:"orderCode"`
		CheckoutURL string `json:"checkoutUrl"`
		QRCode      string `json:"qrCode"`
		Status      string `json:"status"`
	} `json:"data"`
}

type webhookPayload struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

type webhookData struct {
	OrderCode       int64  `json:"orderCode"`
	Amount          int64  `json:"amount"`
	Reference       string `json:"reference"`
	TransactionDate string `json:"transactionDateTime"`
	Code            string `json:"code"`
}

// ReturnURL/CancelURLは呼び出し側が注文ごとに組み立てて渡す
func (c *PayOSClient) CreatePaymentLink(ctx context.Context, req payment.LinkRequest) (payment.Link, error) {
	body := createLinkRequest{
		OrderCode:    req.OrderCode,
		Amount:       req.Amount,
		Description:  req.Description,
		BuyerName:    req.BuyerName,
		BuyerEmail:   req.BuyerEmail,
		BuyerPhone:   req.BuyerPhone,
		BuyerAddress: req.BuyerAddress,
		Items: []itemData{
			{Name: req.Description, Quantity: 1, Price: req.Amount},
		},
		ReturnURL: req.ReturnURL,
		CancelURL: req.CancelURL,
		ExpiredAt: req.ExpiredAt.Unix(),
	}
	return c.createLink(ctx, body)
}

func (c *PayOSClient) createLink(ctx context.Context, body createLinkRequest) (payment.Link, error) {
	// 署名対象はこの5項目の固定並び
	body.Signature = c.sign(fmt.Sprintf(
		"amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		body.Amount, body.CancelURL, body.Description, body.OrderCode, body.ReturnURL,
	))

	raw, err := json.Marshal(body)
	if err != nil {
		return payment.Link{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		payosBaseURL+"/v2/payment-requests", bytes.NewReader(raw))
	if err != nil {
		return payment.Link{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", c.clientID)
	httpReq.Header.Set("x-api-key", c.apiKey)

	res, err := c.http.Do(httpReq)
	if err != nil {
		return payment.Link{}, err
	}
	defer res.Body.Close()

	var out createLinkResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return payment.Link{}, err
	}
	if out.Code != "00" {
		return payment.Link{}, fmt.Errorf("payos: %s (%s)", out.Desc, out.Code)
	}

	return payment.Link{
		OrderCode:   out.Data.OrderCode,
		CheckoutURL: out.Data.CheckoutURL,
		QRCode:      out.Data.QRCode,
		Status:      out.Data.Status,
	}, nil
}

// webhookのdataをキー昇順のk=v&k=v...に並べてHMACを取り、signatureと突き合せる
func (c *PayOSClient) VerifyWebhook(ctx context.Context, body []byte) (payment.WebhookEvent, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return payment.WebhookEvent{}, err
	}

	signed, err := canonicalize(p.Data)
	if err != nil {
		return payment.WebhookEvent{}, err
	}
	expected := c.sign(signed)
	if !hmac.Equal([]byte(expected), []byte(p.Signature)) {
		return payment.WebhookEvent{}, payment.ErrInvalidSignature
	}

	var d webhookData
	if err := json.Unmarshal(p.Data, &d); err != nil {
		return payment.WebhookEvent{}, err
	}

	at := time.Now()
	if d.TransactionDate != "" {
		if t, err := time.Parse("2006-01-02 15:04:05", d.TransactionDate); err == nil {
			at = t
		}
	}

	return payment.WebhookEvent{
		OrderCode:     d.OrderCode,
		Amount:        d.Amount,
		Reference:     d.Reference,
		TransactionAt: at,
		Success:       p.Success && d.Code == "00",
	}, nil
}

func (c *PayOSClient) sign(data string) string {
	mac := hmac.New(sha256.New, []byte(c.checksumKey))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// JSONオブジェクトをキー昇順の k=v&k=v に直す。
// null/ネストは空文字として扱う。
func canonicalize(raw json.RawMessage) (string, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+stringify(m[k]))
	}
	return strings.Join(parts, "&"), nil
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// 整数は小数点なしで出す
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
