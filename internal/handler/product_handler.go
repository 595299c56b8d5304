package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"ecomart/internal/usecase"
)

// /products の公開・出店者向けAPI
type ProductHandler struct {
	uc        *usecase.ProductUsecase
	commentUC *usecase.CommentUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase, commentUC *usecase.CommentUsecase) *ProductHandler {
	return &ProductHandler{uc: uc, commentUC: commentUC}
}

type createProductRequest struct {
	Name               string          `json:"name"`
	Note               string          `json:"note"`
	Price              decimal.Decimal `json:"price"`
	AvailableQuantity  int             `json:"available_quantity"`
	ProductConditionID *int64          `json:"product_condition_id"`
	CategoryIDs        []int64         `json:"category_ids"`
	ImageURLs          []string        `json:"images"`
}

type updateProductRequest struct {
	Name               *string          `json:"name"`
	Note               *string          `json:"note"`
	Price              *decimal.Decimal `json:"price"`
	AvailableQuantity  *int             `json:"available_quantity"`
	ProductConditionID *int64           `json:"product_condition_id"`
	CategoryIDs        []int64          `json:"category_ids"`
	ImageURLs          []string         `json:"images"`
}

type createCommentRequest struct {
	Rating    int      `json:"rating"`
	Content   string   `json:"content"`
	ImageURLs []string `json:"images"`
}

type moderateProductRequest struct {
	Active bool `json:"active"`
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc, adminMW echo.MiddlewareFunc) {
	// 公開
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
	e.GET("/products/:id/comments", h.listComments)

	// 出店者
	g := e.Group("/products")
	g.Use(authMW)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/comments", h.createComment)

	// 管理者モデレーション
	a := e.Group("/admin/products")
	a.Use(authMW)
	a.Use(adminMW)
	a.PATCH("/:id/active", h.moderate)
}

func (h *ProductHandler) list(c echo.Context) error {
	page, limit := parsePager(c)

	var categoryID *int64
	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid category_id"})
		}
		categoryID = &id
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:       page,
		Limit:      limit,
		Q:          c.QueryParam("q"),
		CategoryID: categoryID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateProduct(c.Request().Context(), userID, usecase.CreateProductInput{
		Name:               req.Name,
		Note:               req.Note,
		Price:              req.Price,
		AvailableQuantity:  req.AvailableQuantity,
		ProductConditionID: req.ProductConditionID,
		CategoryIDs:        req.CategoryIDs,
		ImageURLs:          req.ImageURLs,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateProduct(c.Request().Context(), userID, id, usecase.UpdateProductInput{
		Name:               req.Name,
		Note:               req.Note,
		Price:              req.Price,
		AvailableQuantity:  req.AvailableQuantity,
		ProductConditionID: req.ProductConditionID,
		CategoryIDs:        req.CategoryIDs,
		ImageURLs:          req.ImageURLs,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *ProductHandler) listComments(c echo.Context) error {
	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	page, limit := parsePager(c)

	out, err := h.commentUC.ListComments(c.Request().Context(), id, page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) createComment(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req createCommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.commentUC.CreateComment(c.Request().Context(), userID, id, usecase.CreateCommentInput{
		Rating:    req.Rating,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) moderate(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req moderateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.ModerateProduct(c.Request().Context(), adminID, id, req.Active); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}
