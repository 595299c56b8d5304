package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"ecomart/internal/domain/model"
	"ecomart/internal/identity"
	repo "ecomart/internal/repository"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // string
)

// bearerAuth用の認証ミドルウェア。
// トークン検証は外部ID基盤に委ね、初見のUIDはユーザー行と空カートを作る。
func Auth(verifier identity.Verifier, userRepo repo.UserRepository, cartRepo repo.CartRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			ctx := c.Request().Context()

			claims, err := verifier.Verify(ctx, rawToken)
			if err != nil {
				if errors.Is(err, identity.ErrMissingSubject) {
					return c.JSON(http.StatusInternalServerError, errorJSON("missing uid claim"))
				}
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//UIDでローカルのユーザー行を引く。初見なら作る。
			user, err := userRepo.FindByUID(ctx, claims.UID)
			if errors.Is(err, repo.ErrNotFound) {
				user = &model.User{
					UID:   claims.UID,
					Role:  model.RoleCustomer,
					Email: claims.Email,
				}
				if err := userRepo.Create(ctx, user); err != nil {
					return c.JSON(http.StatusInternalServerError, errorJSON("db error"))
				}
				//ユーザー作成と同時に空カート
				if _, err := cartRepo.GetOrCreateByUserID(ctx, user.ID); err != nil {
					return c.JSON(http.StatusInternalServerError, errorJSON("db error"))
				}
			} else if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("db error"))
			}

			//最終ログイン時刻の更新は失敗しても通す
			_ = userRepo.UpdateLastLogin(ctx, user.ID, time.Now())

			//contextへ保存
			c.Set(CtxUserIDKey, user.ID)
			c.Set(CtxUserRoleKey, string(user.Role))

			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
