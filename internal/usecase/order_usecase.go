package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ecomart/internal/domain/model"
	"ecomart/internal/geo"
	repo "ecomart/internal/repository"
)

// OrderUsecase は注文の作成と顧客側の状態遷移を担う。
// 作成はステップ1〜9を1トランザクションで行い、在庫とクーポンの
// 消費はDB側の条件付きUPDATEで競合を解決する。
type OrderUsecase struct {
	txManager    repo.TransactionManager
	orderRepo    repo.OrderRepository
	itemRepo     repo.OrderItemRepository
	productRepo  repo.ProductRepository
	storeRepo    repo.StoreRepository
	userRepo     repo.UserRepository
	voucherRepo  repo.VoucherRepository
	deliveryRepo repo.DeliveryInfoRepository
	cartRepo     repo.CartRepository
	geocoder     geo.Geocoder
}

// DI
func NewOrderUsecase(
	txManager repo.TransactionManager,
	orderRepo repo.OrderRepository,
	itemRepo repo.OrderItemRepository,
	productRepo repo.ProductRepository,
	storeRepo repo.StoreRepository,
	userRepo repo.UserRepository,
	voucherRepo repo.VoucherRepository,
	deliveryRepo repo.DeliveryInfoRepository,
	cartRepo repo.CartRepository,
	geocoder geo.Geocoder,
) *OrderUsecase {
	return &OrderUsecase{
		txManager:    txManager,
		orderRepo:    orderRepo,
		itemRepo:     itemRepo,
		productRepo:  productRepo,
		storeRepo:    storeRepo,
		userRepo:     userRepo,
		voucherRepo:  voucherRepo,
		deliveryRepo: deliveryRepo,
		cartRepo:     cartRepo,
		geocoder:     geocoder,
	}
}

type OrderItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CreateOrderInput struct {
	DeliveryInfoID int64
	Items          []OrderItemInput
	VoucherID      *int64
	Note           string
	PaymentMethod  string
}

type OrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type OrderDetailOutput struct {
	model.Order
	Items []model.OrderItem `json:"items"`
}

// 配送料の見積り。delivery_infoとproductからストア住所を引いて距離を出す。
type ShipFeeQuoteInput struct {
	DeliveryInfoID int64
	ProductID      int64
}

type ShipFeeQuoteOutput struct {
	DistanceKm float64         `json:"distance_km"`
	ShipFee    decimal.Decimal `json:"ship_fee"`
}

func (u *OrderUsecase) QuoteShipFee(ctx context.Context, userID int64, in ShipFeeQuoteInput) (ShipFeeQuoteOutput, error) {
	if userID <= 0 {
		return ShipFeeQuoteOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	delivery, err := u.resolveDelivery(ctx, userID, in.DeliveryInfoID)
	if err != nil {
		return ShipFeeQuoteOutput{}, err
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return ShipFeeQuoteOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ShipFeeQuoteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	store, err := u.storeRepo.FindByID(ctx, p.StoreID)
	if err != nil {
		return ShipFeeQuoteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	km, err := u.routeDistance(ctx, store.Address, delivery.Address)
	if err != nil {
		return ShipFeeQuoteOutput{}, err
	}

	return ShipFeeQuoteOutput{DistanceKm: km, ShipFee: ShipFeeCost(km)}, nil
}

// 注文作成。検証と価格計算を済ませてから1トランザクションで確定する。
// 在庫減算・クーポン消費・注文行・通知メールのenqueueは全て同じtxに乗り、
// どれか一つでも失敗すれば全部巻き戻る。
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (OrderDetailOutput, error) {
	if userID <= 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	// 1. 配送先は自分のものだけ
	delivery, err := u.resolveDelivery(ctx, userID, in.DeliveryInfoID)
	if err != nil {
		return OrderDetailOutput{}, err
	}

	// 2. 空注文の拒否
	if len(in.Items) == 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "empty order")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity < 1 {
			return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
		}
	}

	method := model.PaymentMethod(in.PaymentMethod)
	if method == "" {
		method = model.PaymentMethodCash
	}
	if method != model.PaymentMethodCash && method != model.PaymentMethodOnline {
		return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}

	// 3. 全商品が実在し、同一ストアに属すること
	products := make(map[int64]model.Product, len(in.Items))
	var storeID int64
	for i, it := range in.Items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product")
		}
		if err != nil {
			return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if i == 0 {
			storeID = p.StoreID
		} else if p.StoreID != storeID {
			return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "items span multiple stores")
		}
		products[it.ProductID] = p
	}

	// 4. 事前の在庫チェック（確定時にもう一度、条件付きUPDATEで守る）
	for _, it := range in.Items {
		p := products[it.ProductID]
		if it.Quantity > p.AvailableQuantity {
			return OrderDetailOutput{}, NewHTTPError(http.StatusConflict,
				fmt.Sprintf("insufficient stock: %s", p.Name))
		}
	}

	// 5. 小計
	subtotal := decimal.Zero
	for _, it := range in.Items {
		p := products[it.ProductID]
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	// 6. 配送料
	store, err := u.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	km, err := u.routeDistance(ctx, store.Address, delivery.Address)
	if err != nil {
		return OrderDetailOutput{}, err
	}
	shipFee := ShipFeeCost(km)
	total := subtotal.Add(shipFee)

	// 7. クーポン。割引は小計＋配送料の後に掛ける。
	var voucher *model.Voucher
	if in.VoucherID != nil {
		v, err := u.voucherRepo.FindByID(ctx, *in.VoucherID)
		if errors.Is(err, repo.ErrNotFound) {
			return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "voucher invalid")
		}
		if err != nil {
			return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !v.IsValid(time.Now()) {
			return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "voucher invalid")
		}
		if total.LessThan(v.MinOrderValue) {
			return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "order below voucher minimum")
		}
		total = applyDiscount(total, v.DiscountPercent)
		voucher = &v
	}

	customer, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	owner, err := u.userRepo.FindByID(ctx, store.UserID)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 8–9. 確定。ここから先はall-or-nothing。
	var created model.Order
	var createdItems []model.OrderItem
	err = u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		code, err := u.generateOrderCode(ctx, r.Orders())
		if err != nil {
			return err
		}

		// 在庫の条件付き減算。足りなくなっていたら中止。
		for _, it := range in.Items {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusConflict,
					fmt.Sprintf("insufficient stock: %s", products[it.ProductID].Name))
			}
		}

		// クーポンの最後の1枚も条件付きUPDATEで取り合う
		if voucher != nil {
			ok, err := r.Vouchers().IncrementUsedCountIfAvailable(ctx, voucher.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "voucher invalid")
			}
		}

		order := model.Order{
			OrderCode:      code,
			UserID:         userID,
			StoreID:        storeID,
			OrderStatusID:  model.OrderStatusPending,
			ShipFee:        shipFee,
			TotalCost:      total,
			Note:           in.Note,
			PaymentMethod:  method,
			DeliveryInfoID: &delivery.ID,
		}
		if voucher != nil {
			order.VoucherID = &voucher.ID
		}

		created, err = r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items := make([]model.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, model.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, created.ID, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		createdItems = items

		// 注文済みの商品はカートから外す
		if cart, err := u.cartRepo.FindByUserID(ctx, userID); err == nil {
			ids := make([]int64, 0, len(in.Items))
			for _, it := range in.Items {
				ids = append(ids, it.ProductID)
			}
			if err := r.CartItems().DeleteByCartAndProducts(ctx, cart.ID, ids); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		// 通知はoutboxへ。配信はworker任せで、失敗しても注文には響かない。
		if err := r.Outbox().Enqueue(ctx, orderMail(customer.Email,
			"Your order "+created.OrderCode,
			customerMailBody(created, store.Name))); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Outbox().Enqueue(ctx, orderMail(owner.Email,
			"New order "+created.OrderCode,
			storeMailBody(created, customer))); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return OrderDetailOutput{}, err
		}
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return OrderDetailOutput{Order: created, Items: createdItems}, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int, statusID *int64) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	orders, total, err := u.orderRepo.ListByUserID(ctx, userID, repo.OrderListFilter{
		Page:     page,
		Limit:    limit,
		StatusID: statusID,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderListOutput{Items: orders, Total: total, Page: page, Limit: limit}, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, userID int64, orderID int64) (OrderDetailOutput, error) {
	order, err := u.findOwnOrder(ctx, userID, orderID)
	if err != nil {
		return OrderDetailOutput{}, err
	}

	items, err := u.itemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderDetailOutput{Order: order, Items: items}, nil
}

// 顧客が動かせる遷移は {1,2}→4（キャンセル依頼）と 3→6（受取確認）だけ。
func (u *OrderUsecase) UpdateMyOrderStatus(ctx context.Context, userID int64, orderID int64, targetStatusID int64) (model.Order, error) {
	order, err := u.findOwnOrder(ctx, userID, orderID)
	if err != nil {
		return model.Order{}, err
	}

	if !customerTransitionAllowed(order.OrderStatusID, targetStatusID) {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "illegal transition")
	}

	if err := u.orderRepo.UpdateStatus(ctx, orderID, targetStatusID); err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	order.OrderStatusID = targetStatusID
	return order, nil
}

func customerTransitionAllowed(current int64, target int64) bool {
	switch {
	case target == model.OrderStatusCancelRequested:
		return current == model.OrderStatusPending || current == model.OrderStatusAccepted
	case target == model.OrderStatusCompleted:
		return current == model.OrderStatusAwaitingDelivery
	default:
		return false
	}
}

func (u *OrderUsecase) findOwnOrder(ctx context.Context, userID int64, orderID int64) (model.Order, error) {
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

func (u *OrderUsecase) resolveDelivery(ctx context.Context, userID int64, deliveryInfoID int64) (model.DeliveryInformation, error) {
	if deliveryInfoID <= 0 {
		return model.DeliveryInformation{}, NewHTTPError(http.StatusBadRequest, "invalid address")
	}
	d, err := u.deliveryRepo.FindByID(ctx, deliveryInfoID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.DeliveryInformation{}, NewHTTPError(http.StatusBadRequest, "invalid address")
	}
	if err != nil {
		return model.DeliveryInformation{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if d.OwnerID() != userID {
		return model.DeliveryInformation{}, NewHTTPError(http.StatusBadRequest, "invalid address")
	}
	return d, nil
}

// ルートが引けなければ注文は進めない
func (u *OrderUsecase) routeDistance(ctx context.Context, from string, to string) (float64, error) {
	km, err := u.geocoder.RouteDistanceKm(ctx, from, to)
	if errors.Is(err, geo.ErrNoRoute) {
		return 0, NewHTTPError(http.StatusBadGateway, "distance unavailable")
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusBadGateway, "distance unavailable")
	}
	return km, nil
}

// ERM+unix秒で採番し、衝突したらuuid先頭4文字を足して引き直す
func (u *OrderUsecase) generateOrderCode(ctx context.Context, orders repo.OrderRepository) (string, error) {
	base := fmt.Sprintf("ERM%d", time.Now().Unix())
	code := base
	for i := 0; i < 5; i++ {
		exists, err := orders.ExistsByOrderCode(ctx, code)
		if err != nil {
			return "", NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !exists {
			return code, nil
		}
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:4])
		code = base + suffix
	}
	return "", NewHTTPError(http.StatusInternalServerError, "order code exhausted")
}

func orderMail(recipient string, subject string, body string) model.EmailOutbox {
	return model.EmailOutbox{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	}
}

func customerMailBody(o model.Order, storeName string) string {
	return fmt.Sprintf(
		"<p>Your order <b>%s</b> at %s has been placed.</p><p>Total: %s VND</p>",
		o.OrderCode, storeName, o.TotalCost.StringFixed(0),
	)
}

func storeMailBody(o model.Order, customer *model.User) string {
	return fmt.Sprintf(
		"<p>New order <b>%s</b> from %s %s.</p><p>Total: %s VND</p>",
		o.OrderCode, customer.FirstName, customer.LastName, o.TotalCost.StringFixed(0),
	)
}
