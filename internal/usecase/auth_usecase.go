package usecase

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"ecomart/internal/domain/model"
	"ecomart/internal/identity"
	repo "ecomart/internal/repository"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// AuthUsecase は登録・ログイン・自分のプロフィールの業務ロジック。
// トークンの検証そのものは外部ID基盤に委ね、こちらはUIDと
// ローカルのAccount行の対応だけを持つ。
type AuthUsecase struct {
	verifier identity.Verifier
	userRepo repo.UserRepository
	cartRepo repo.CartRepository
}

// DI
func NewAuthUsecase(
	verifier identity.Verifier,
	userRepo repo.UserRepository,
	cartRepo repo.CartRepository,
) *AuthUsecase {
	return &AuthUsecase{
		verifier: verifier,
		userRepo: userRepo,
		cartRepo: cartRepo,
	}
}

type RegisterInput struct {
	IDToken     string
	FirstName   string
	LastName    string
	PhoneNumber string
	AvatarURL   string
}

// Register は検証済みトークンのUIDで顧客アカウントを作る。
// メール未確認のトークンと既存UIDは拒否する。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.IDToken == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "missing id token")
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "missing name")
	}
	if !phonePattern.MatchString(in.PhoneNumber) {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid phone number")
	}

	claims, err := u.verifier.Verify(ctx, in.IDToken)
	if err != nil {
		if errors.Is(err, identity.ErrMissingSubject) {
			return nil, NewHTTPError(http.StatusInternalServerError, "missing uid claim")
		}
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	if !claims.EmailVerified {
		return nil, NewHTTPError(http.StatusBadRequest, "email not verified")
	}

	if _, err := u.userRepo.FindByUID(ctx, claims.UID); err == nil {
		return nil, NewHTTPError(http.StatusConflict, "account already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user := &model.User{
		UID:         claims.UID,
		Role:        model.RoleCustomer,
		Email:       claims.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: in.PhoneNumber,
		AvatarURL:   in.AvatarURL,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// アカウント作成と同時に空カートを作る
	if _, err := u.cartRepo.GetOrCreateByUserID(ctx, user.ID); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return user, nil
}

// Login はトークンを検証して既存アカウントを返す。未登録なら404。
func (u *AuthUsecase) Login(ctx context.Context, idToken string) (*model.User, error) {
	if idToken == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	claims, err := u.verifier.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, identity.ErrMissingSubject) {
			return nil, NewHTTPError(http.StatusInternalServerError, "missing uid claim")
		}
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	user, err := u.userRepo.FindByUID(ctx, claims.UID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NewHTTPError(http.StatusNotFound, "account not found")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	if err := u.userRepo.UpdateLastLogin(ctx, user.ID, now); err == nil {
		user.LastLoginAt = &now
	}

	return user, nil
}

func (u *AuthUsecase) GetMe(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return user, nil
}

// 部分更新。nilのフィールドは触らない。
type UpdateMeInput struct {
	FirstName      *string
	LastName       *string
	PhoneNumber    *string
	PaymentAccount *string
	AvatarURL      *string
}

func (u *AuthUsecase) UpdateMe(ctx context.Context, userID int64, in UpdateMeInput) (*model.User, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.PhoneNumber != nil {
		if !phonePattern.MatchString(*in.PhoneNumber) {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid phone number")
		}
		user.PhoneNumber = *in.PhoneNumber
	}
	if in.PaymentAccount != nil {
		user.PaymentAccount = *in.PaymentAccount
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return user, nil
}
