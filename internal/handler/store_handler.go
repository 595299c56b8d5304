package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"ecomart/internal/usecase"
)

// /stores のHTTP。公開の閲覧系と出店者の管理系をまとめる。
type StoreHandler struct {
	uc        *usecase.StoreUsecase
	productUC *usecase.ProductUsecase
}

// DI
func NewStoreHandler(uc *usecase.StoreUsecase, productUC *usecase.ProductUsecase) *StoreHandler {
	return &StoreHandler{uc: uc, productUC: productUC}
}

type createStoreRequest struct {
	Name              string `json:"name"`
	PhoneNumber       string `json:"phone_number"`
	Introduce         string `json:"introduce"`
	Address           string `json:"address"`
	AvatarURL         string `json:"avatar"`
	BankName          string `json:"bank_name"`
	BankAccountName   string `json:"bank_account_name"`
	BankAccountNumber string `json:"bank_account_number"`
}

type updateStoreRequest struct {
	Name              *string `json:"name"`
	PhoneNumber       *string `json:"phone_number"`
	Introduce         *string `json:"introduce"`
	Address           *string `json:"address"`
	AvatarURL         *string `json:"avatar"`
	BankName          *string `json:"bank_name"`
	BankAccountName   *string `json:"bank_account_name"`
	BankAccountNumber *string `json:"bank_account_number"`
}

type updateOrderStatusRequest struct {
	OrderID  int64 `json:"order_id"`
	StatusID int64 `json:"status_id"`
}

func (h *StoreHandler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc) {
	// 公開
	e.GET("/stores", h.list)
	e.GET("/stores/:id", h.detail)
	e.GET("/stores/:id/products", h.storeProducts)

	// 出店者
	g := e.Group("/stores")
	g.Use(authMW)
	g.POST("", h.create)
	g.GET("/my-store", h.myStore)
	g.PATCH("/my-store", h.updateMyStore)
	g.DELETE("/my-store", h.deleteMyStore)
	g.GET("/my-products", h.myProducts)
	g.GET("/my-orders-store", h.myStoreOrders)
	g.GET("/orders-of-status", h.orderStats)
	g.PATCH("/update-order-status", h.updateOrderStatus)
}

func (h *StoreHandler) list(c echo.Context) error {
	page, limit := parsePager(c)

	out, err := h.uc.ListStores(c.Request().Context(), page, limit, c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) detail(c echo.Context) error {
	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetStore(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) storeProducts(c echo.Context) error {
	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	page, limit := parsePager(c)

	out, err := h.uc.ListStoreProducts(c.Request().Context(), id, page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createStoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateStore(c.Request().Context(), userID, usecase.CreateStoreInput{
		Name:              req.Name,
		PhoneNumber:       req.PhoneNumber,
		Introduce:         req.Introduce,
		Address:           req.Address,
		AvatarURL:         req.AvatarURL,
		BankName:          req.BankName,
		BankAccountName:   req.BankAccountName,
		BankAccountNumber: req.BankAccountNumber,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *StoreHandler) myStore(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetMyStore(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) updateMyStore(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req updateStoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateMyStore(c.Request().Context(), userID, usecase.UpdateStoreInput{
		Name:              req.Name,
		PhoneNumber:       req.PhoneNumber,
		Introduce:         req.Introduce,
		Address:           req.Address,
		AvatarURL:         req.AvatarURL,
		BankName:          req.BankName,
		BankAccountName:   req.BankAccountName,
		BankAccountNumber: req.BankAccountNumber,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) deleteMyStore(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.DeleteMyStore(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *StoreHandler) myProducts(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	page, limit := parsePager(c)

	out, err := h.productUC.ListMyProducts(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) myStoreOrders(c echo.Context) error {
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

	out, err := h.uc.ListMyStoreOrders(c.Request().Context(), userID, page, limit, statusID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) orderStats(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetMyStoreOrderStats(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *StoreHandler) updateOrderStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req updateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateOrderStatus(c.Request().Context(), userID, req.OrderID, req.StatusID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
