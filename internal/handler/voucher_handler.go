package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"ecomart/internal/usecase"
)

// クーポンのHTTP。閲覧は認証ユーザー、作成/削除は管理者のみ。
type VoucherHandler struct {
	uc *usecase.VoucherUsecase
}

// DI
func NewVoucherHandler(uc *usecase.VoucherUsecase) *VoucherHandler {
	return &VoucherHandler{uc: uc}
}

type createVoucherRequest struct {
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	DiscountPercent int             `json:"discount_percent"`
	MinOrderValue   decimal.Decimal `json:"min_order_value"`
	Quantity        int             `json:"quantity"`
	StartDate       time.Time       `json:"start_date"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	IsActive        *bool           `json:"is_active"`
}

func (h *VoucherHandler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc, adminMW echo.MiddlewareFunc) {
	g := e.Group("/vouchers")
	g.Use(authMW)
	g.GET("", h.list)
	g.GET("/:id", h.detail)

	a := e.Group("/vouchers")
	a.Use(authMW)
	a.Use(adminMW)
	a.POST("", h.create)
	a.DELETE("/:id", h.delete)
}

func (h *VoucherHandler) list(c echo.Context) error {
	out, err := h.uc.ListVouchers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *VoucherHandler) detail(c echo.Context) error {
	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetVoucher(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *VoucherHandler) create(c echo.Context) error {
	var req createVoucherRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateVoucher(c.Request().Context(), usecase.CreateVoucherInput{
		Code:            req.Code,
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		MinOrderValue:   req.MinOrderValue,
		Quantity:        req.Quantity,
		StartDate:       req.StartDate,
		ExpiryDate:      req.ExpiryDate,
		IsActive:        req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *VoucherHandler) delete(c echo.Context) error {
	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteVoucher(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
