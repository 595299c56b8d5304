package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ecomart/internal/domain/model"
	repo "ecomart/internal/repository"
)

// レビューは「完了済み注文にその商品が含まれる顧客」だけが、
// 商品ごとに1回だけ書ける。
type CommentUsecase struct {
	commentRepo   repo.CommentRepository
	productRepo   repo.ProductRepository
	orderItemRepo repo.OrderItemRepository
	userRepo      repo.UserRepository
}

// DI
func NewCommentUsecase(
	commentRepo repo.CommentRepository,
	productRepo repo.ProductRepository,
	orderItemRepo repo.OrderItemRepository,
	userRepo repo.UserRepository,
) *CommentUsecase {
	return &CommentUsecase{
		commentRepo:   commentRepo,
		productRepo:   productRepo,
		orderItemRepo: orderItemRepo,
		userRepo:      userRepo,
	}
}

type CreateCommentInput struct {
	Rating    int
	Content   string
	ImageURLs []string
}

type CommentResponse struct {
	ID        int64                `json:"id"`
	Rating    int                  `json:"rating"`
	Content   string               `json:"content"`
	Images    []model.CommentImage `json:"images"`
	CreatedAt string               `json:"created_date"`
	User      CommentUserSummary   `json:"user"`
}

type CommentUserSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

type CommentListOutput struct {
	Items []CommentResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

func (u *CommentUsecase) CreateComment(ctx context.Context, userID int64, productID int64, in CreateCommentInput) (CommentResponse, error) {
	if userID <= 0 {
		return CommentResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CommentResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return CommentResponse{}, NewHTTPError(http.StatusBadRequest, "invalid rating")
	}
	if strings.TrimSpace(in.Content) == "" {
		return CommentResponse{}, NewHTTPError(http.StatusBadRequest, "missing content")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CommentResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CommentResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 1商品1レビュー
	exists, err := u.commentRepo.ExistsByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return CommentResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return CommentResponse{}, NewHTTPError(http.StatusConflict, "already reviewed")
	}

	// 完了済み注文にその商品が含まれること
	eligible, err := u.orderItemRepo.ExistsCompletedPurchase(ctx, userID, productID)
	if err != nil {
		return CommentResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !eligible {
		return CommentResponse{}, NewHTTPError(http.StatusForbidden, "not eligible")
	}

	images := make([]model.CommentImage, 0, len(in.ImageURLs))
	for _, url := range in.ImageURLs {
		images = append(images, model.CommentImage{URL: url})
	}

	created, err := u.commentRepo.Create(ctx, model.Comment{
		UserID:    userID,
		ProductID: productID,
		Rating:    in.Rating,
		Content:   strings.TrimSpace(in.Content),
		Images:    images,
	})
	if err != nil {
		return CommentResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return CommentResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toCommentResponse(created, user), nil
}

// 新しい順。ユーザーのサマリを埋めて返す。
func (u *CommentUsecase) ListComments(ctx context.Context, productID int64, page int, limit int) (CommentListOutput, error) {
	if productID <= 0 {
		return CommentListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CommentListOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CommentListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	comments, total, err := u.commentRepo.ListByProductID(ctx, productID, page, limit)
	if err != nil {
		return CommentListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		user, err := u.userRepo.FindByID(ctx, c.UserID)
		if err != nil {
			continue
		}
		items = append(items, toCommentResponse(c, user))
	}

	return CommentListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func toCommentResponse(c model.Comment, user *model.User) CommentResponse {
	images := c.Images
	if images == nil {
		images = []model.CommentImage{}
	}
	return CommentResponse{
		ID:        c.ID,
		Rating:    c.Rating,
		Content:   c.Content,
		Images:    images,
		CreatedAt: c.CreatedAt.Format("2006-01-02 15:04:05"),
		User: CommentUserSummary{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Avatar:    user.AvatarURL,
		},
	}
}
