package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ecomart/internal/usecase"
)

// カテゴリ・商品状態・注文ステータスのマスタ参照。
// カテゴリの作成/削除だけ管理者に限定する。
type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc, adminMW echo.MiddlewareFunc) {
	e.GET("/categories", h.listCategories)
	e.GET("/product-conditions", h.listConditions)
	e.GET("/order-statuses", h.listOrderStatuses)

	a := e.Group("/categories")
	a.Use(authMW)
	a.Use(adminMW)
	a.POST("", h.createCategory)
	a.DELETE("/:id", h.deleteCategory)
}

func (h *CatalogHandler) listCategories(c echo.Context) error {
	out, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) listConditions(c echo.Context) error {
	out, err := h.uc.ListProductConditions(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) listOrderStatuses(c echo.Context) error {
	out, err := h.uc.ListOrderStatuses(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) createCategory(c echo.Context) error {
	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *CatalogHandler) deleteCategory(c echo.Context) error {
	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteCategory(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
