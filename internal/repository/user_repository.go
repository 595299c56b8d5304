package repository

import (
	"context"
	"time"

	"ecomart/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// 外部ID基盤のsubjectから1件取得する。
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	// プロフィール更新（部分更新はusecase側でフィールドを詰め替える）
	Update(ctx context.Context, user *model.User) error
	//最終ログイン時刻だけを更新する
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
}
