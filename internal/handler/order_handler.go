package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"ecomart/internal/usecase"
)

// 注文と決済のHTTP
type OrderHandler struct {
	uc        *usecase.OrderUsecase
	paymentUC *usecase.PaymentUsecase
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase, paymentUC *usecase.PaymentUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, paymentUC: paymentUC}
}

type createOrderRequest struct {
	DeliveryInfoID int64                    `json:"delivery_info_id"`
	Items          []usecase.OrderItemInput `json:"items"`
	VoucherID      *int64                   `json:"voucher_id"`
	Note           string                   `json:"note"`
	PaymentMethod  string                   `json:"payment_method"`
}

type updateMyOrderStatusRequest struct {
	StatusID int64 `json:"status_id"`
}

type shipFeeRequest struct {
	DeliveryInfoID int64 `json:"delivery_info_id"`
	ProductID      int64 `json:"product_id"`
}

type updatePayOSStatusRequest struct {
	IsPaid        *bool      `json:"is_paid"`
	PaidAt        *time.Time `json:"paid_at"`
	Status        *string    `json:"status"`
	TransactionID *string    `json:"transaction_id"`
	OrderCode     *int64     `json:"order_code"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc) {
	g := e.Group("/orders")
	g.Use(authMW)

	g.POST("", h.create)
	g.GET("/my-orders", h.myOrders)
	g.GET("/:id", h.detail)
	g.PATCH("/:id/update-status", h.updateStatus)
	g.POST("/:id/create-payos-payment", h.createPayment)
	g.POST("/:id/update-payos-status", h.updatePaymentStatus)

	f := e.Group("/ship-fee")
	f.Use(authMW)
	f.POST("", h.shipFee)

	// webhookは署名で守られるので認証なし
	e.POST("/payos/webhook", h.webhook)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), userID, usecase.CreateOrderInput{
		DeliveryInfoID: req.DeliveryInfoID,
		Items:          req.Items,
		VoucherID:      req.VoucherID,
		Note:           req.Note,
		PaymentMethod:  req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) myOrders(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	page, limit := parsePager(c)

	var statusID *int64
	if raw := c.QueryParam("status_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status_id"})
		}
		statusID = &id
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID, page, limit, statusID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetOrder(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req updateMyOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateMyOrderStatus(c.Request().Context(), userID, id, req.StatusID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) shipFee(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req shipFeeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.QuoteShipFee(c.Request().Context(), userID, usecase.ShipFeeQuoteInput{
		DeliveryInfoID: req.DeliveryInfoID,
		ProductID:      req.ProductID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) createPayment(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.paymentUC.CreatePaymentLink(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updatePaymentStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req updatePayOSStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.paymentUC.UpdatePaymentStatus(c.Request().Context(), userID, id, usecase.UpdatePaymentStatusInput{
		IsPaid:        req.IsPaid,
		PaidAt:        req.PaidAt,
		Status:        req.Status,
		TransactionID: req.TransactionID,
		OrderCode:     req.OrderCode,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 署名検証のため生のボディをそのまま渡す
func (h *OrderHandler) webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.paymentUC.HandleWebhook(c.Request().Context(), body); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "ok"})
}
