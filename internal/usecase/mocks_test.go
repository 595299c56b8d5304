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
	"ecomart/internal/geo"
	"ecomart/internal/payment"
	repo "ecomart/internal/repository"
)

// =====================
// usecaseテストで共用するmock
// =====================

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	args := m.Called(ctx, uid)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

type storeRepoMock struct{ mock.Mock }

func (m *storeRepoMock) Create(ctx context.Context, store model.Store) (model.Store, error) {
	args := m.Called(ctx, store)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

func (m *storeRepoMock) FindByID(ctx context.Context, storeID int64) (model.Store, error) {
	args := m.Called(ctx, storeID)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

func (m *storeRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Store, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

func (m *storeRepoMock) List(ctx context.Context, q repo.StoreListQuery) ([]model.Store, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Store)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *storeRepoMock) Update(ctx context.Context, store model.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func (m *storeRepoMock) Delete(ctx context.Context, storeID int64) error {
	args := m.Called(ctx, storeID)
	return args.Error(0)
}

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) FindByIDWithStore(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) ListByStoreID(ctx context.Context, storeID int64, page int, limit int) ([]model.Product, int64, error) {
	args := m.Called(ctx, storeID, page, limit)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *productRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *productRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *productRepoMock) ReplaceCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	args := m.Called(ctx, productID, categoryIDs)
	return args.Error(0)
}

func (m *productRepoMock) ReplaceImages(ctx context.Context, productID int64, urls []string) error {
	args := m.Called(ctx, productID, urls)
	return args.Error(0)
}

func (m *productRepoMock) SetActive(ctx context.Context, productID int64, active bool) error {
	args := m.Called(ctx, productID, active)
	return args.Error(0)
}

type inventoryRepoMock struct{ mock.Mock }

func (m *inventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

type orderRepoMock struct{ mock.Mock }

func (m *orderRepoMock) Create(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	created, _ := args.Get(0).(model.Order)
	return created, args.Error(1)
}

func (m *orderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) FindByPayOSOrderCode(ctx context.Context, payosOrderCode int64) (model.Order, error) {
	args := m.Called(ctx, payosOrderCode)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) ExistsByOrderCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *orderRepoMock) ListByUserID(ctx context.Context, userID int64, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) ListByStoreID(ctx context.Context, storeID int64, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, storeID, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) UpdateStatus(ctx context.Context, orderID int64, statusID int64) error {
	args := m.Called(ctx, orderID, statusID)
	return args.Error(0)
}

func (m *orderRepoMock) UpdatePayment(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *orderRepoMock) CountByStoreAndStatus(ctx context.Context, storeID int64) ([]repo.OrderStatusCount, error) {
	args := m.Called(ctx, storeID)
	counts, _ := args.Get(0).([]repo.OrderStatusCount)
	return counts, args.Error(1)
}

func (m *orderRepoMock) CountByStoreID(ctx context.Context, storeID int64) (int64, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) SumCompletedRevenue(ctx context.Context, storeID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, storeID)
	sum, _ := args.Get(0).(decimal.Decimal)
	return sum, args.Error(1)
}

type orderItemRepoMock struct{ mock.Mock }

func (m *orderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *orderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *orderItemRepoMock) ExistsCompletedPurchase(ctx context.Context, userID int64, productID int64) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

type voucherRepoMock struct{ mock.Mock }

func (m *voucherRepoMock) Create(ctx context.Context, v model.Voucher) (model.Voucher, error) {
	args := m.Called(ctx, v)
	created, _ := args.Get(0).(model.Voucher)
	return created, args.Error(1)
}

func (m *voucherRepoMock) FindByID(ctx context.Context, id int64) (model.Voucher, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(model.Voucher)
	return v, args.Error(1)
}

func (m *voucherRepoMock) List(ctx context.Context) ([]model.Voucher, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Voucher)
	return items, args.Error(1)
}

func (m *voucherRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *voucherRepoMock) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *voucherRepoMock) IncrementUsedCountIfAvailable(ctx context.Context, voucherID int64) (bool, error) {
	args := m.Called(ctx, voucherID)
	return args.Bool(0), args.Error(1)
}

type deliveryRepoMock struct{ mock.Mock }

func (m *deliveryRepoMock) Create(ctx context.Context, d model.DeliveryInformation) (model.DeliveryInformation, error) {
	args := m.Called(ctx, d)
	created, _ := args.Get(0).(model.DeliveryInformation)
	return created, args.Error(1)
}

func (m *deliveryRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.DeliveryInformation, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.DeliveryInformation)
	return items, args.Error(1)
}

func (m *deliveryRepoMock) FindByID(ctx context.Context, id int64) (model.DeliveryInformation, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(model.DeliveryInformation)
	return d, args.Error(1)
}

func (m *deliveryRepoMock) Update(ctx context.Context, d model.DeliveryInformation) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *deliveryRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type cartRepoMock struct{ mock.Mock }

func (m *cartRepoMock) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *cartRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

type cartItemRepoMock struct{ mock.Mock }

func (m *cartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *cartItemRepoMock) FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartID, productID)
	item, _ := args.Get(0).(model.CartItem)
	return item, args.Error(1)
}

func (m *cartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int) error {
	args := m.Called(ctx, cartID, productID, addQty)
	return args.Error(0)
}

func (m *cartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *cartItemRepoMock) DeleteByCartAndProduct(ctx context.Context, cartID int64, productID int64) error {
	args := m.Called(ctx, cartID, productID)
	return args.Error(0)
}

func (m *cartItemRepoMock) DeleteByCartAndProducts(ctx context.Context, cartID int64, productIDs []int64) error {
	args := m.Called(ctx, cartID, productIDs)
	return args.Error(0)
}

type outboxRepoMock struct{ mock.Mock }

func (m *outboxRepoMock) Enqueue(ctx context.Context, msg model.EmailOutbox) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *outboxRepoMock) ListPending(ctx context.Context, limit int) ([]model.EmailOutbox, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]model.EmailOutbox)
	return items, args.Error(1)
}

func (m *outboxRepoMock) MarkSent(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *outboxRepoMock) MarkFailed(ctx context.Context, id int64, lastError string, final bool) error {
	args := m.Called(ctx, id, lastError, final)
	return args.Error(0)
}

type transactionRepoMock struct{ mock.Mock }

func (m *transactionRepoMock) CreateIfAbsent(ctx context.Context, t model.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *transactionRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.Transaction, error) {
	args := m.Called(ctx, orderID)
	t, _ := args.Get(0).(model.Transaction)
	return t, args.Error(1)
}

type commentRepoMock struct{ mock.Mock }

func (m *commentRepoMock) Create(ctx context.Context, c model.Comment) (model.Comment, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(model.Comment)
	return created, args.Error(1)
}

func (m *commentRepoMock) ExistsByUserAndProduct(ctx context.Context, userID int64, productID int64) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *commentRepoMock) ListByProductID(ctx context.Context, productID int64, page int, limit int) ([]model.Comment, int64, error) {
	args := m.Called(ctx, productID, page, limit)
	items, _ := args.Get(0).([]model.Comment)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *commentRepoMock) CountByProductID(ctx context.Context, productID int64) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

type categoryRepoMock struct{ mock.Mock }

func (m *categoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Category)
	return items, args.Error(1)
}

func (m *categoryRepoMock) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *categoryRepoMock) Create(ctx context.Context, c model.Category) (model.Category, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(model.Category)
	return created, args.Error(1)
}

func (m *categoryRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *categoryRepoMock) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	found, _ := args.Get(0).([]int64)
	return found, args.Error(1)
}

type conditionRepoMock struct{ mock.Mock }

func (m *conditionRepoMock) List(ctx context.Context) ([]model.ProductCondition, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.ProductCondition)
	return items, args.Error(1)
}

func (m *conditionRepoMock) FindByID(ctx context.Context, id int64) (model.ProductCondition, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.ProductCondition)
	return c, args.Error(1)
}

type orderStatusRepoMock struct{ mock.Mock }

func (m *orderStatusRepoMock) List(ctx context.Context) ([]model.OrderStatus, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.OrderStatus)
	return items, args.Error(1)
}

func (m *orderStatusRepoMock) FindByID(ctx context.Context, id int64) (model.OrderStatus, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(model.OrderStatus)
	return s, args.Error(1)
}

type auditRepoMock struct{ mock.Mock }

func (m *auditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *auditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]model.AuditLog)
	return items, args.Error(1)
}

type geocoderMock struct{ mock.Mock }

func (m *geocoderMock) IsValidAddress(ctx context.Context, address string) (bool, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.Error(1)
}

func (m *geocoderMock) Coordinates(ctx context.Context, address string) (geo.Coordinates, error) {
	args := m.Called(ctx, address)
	c, _ := args.Get(0).(geo.Coordinates)
	return c, args.Error(1)
}

func (m *geocoderMock) RouteDistanceKm(ctx context.Context, from string, to string) (float64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(float64), args.Error(1)
}

type gatewayMock struct{ mock.Mock }

func (m *gatewayMock) CreatePaymentLink(ctx context.Context, req payment.LinkRequest) (payment.Link, error) {
	args := m.Called(ctx, req)
	link, _ := args.Get(0).(payment.Link)
	return link, args.Error(1)
}

func (m *gatewayMock) VerifyWebhook(ctx context.Context, body []byte) (payment.WebhookEvent, error) {
	args := m.Called(ctx, body)
	ev, _ := args.Get(0).(payment.WebhookEvent)
	return ev, args.Error(1)
}

// =====================
// トランザクションの偽物
// =====================

// txReposStub はWithinTx内で使われる各repoをmockに差し替える。
type txReposStub struct {
	orders       *orderRepoMock
	orderItems   *orderItemRepoMock
	products     *productRepoMock
	inventory    *inventoryRepoMock
	vouchers     *voucherRepoMock
	cartItems    *cartItemRepoMock
	outbox       *outboxRepoMock
	transactions *transactionRepoMock
}

func (s *txReposStub) Orders() repo.OrderRepository { return s.orders }

func (s *txReposStub) OrderItems() repo.OrderItemRepository { return s.orderItems }

func (s *txReposStub) Products() repo.ProductRepository { return s.products }

func (s *txReposStub) Inventory() repo.InventoryRepository { return s.inventory }

func (s *txReposStub) Vouchers() repo.VoucherRepository { return s.vouchers }

func (s *txReposStub) CartItems() repo.CartItemRepository { return s.cartItems }

func (s *txReposStub) Outbox() repo.OutboxRepository { return s.outbox }

func (s *txReposStub) Transactions() repo.TransactionRepository { return s.transactions }

func newTxReposStub() *txReposStub {
	return &txReposStub{
		orders:       new(orderRepoMock),
		orderItems:   new(orderItemRepoMock),
		products:     new(productRepoMock),
		inventory:    new(inventoryRepoMock),
		vouchers:     new(voucherRepoMock),
		cartItems:    new(cartItemRepoMock),
		outbox:       new(outboxRepoMock),
		transactions: new(transactionRepoMock),
	}
}

// txManagerStub はfnをそのまま実行する。fnがエラーを返せば
// 実物と同じくそのエラーを返す（ロールバック相当）。
type txManagerStub struct {
	repos  *txReposStub
	called bool
}

func (s *txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.called = true
	return fn(s.repos)
}

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
