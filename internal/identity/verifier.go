package identity

import (
	"context"
	"errors"
)

var (
	// トークンが無い
	ErrNoToken = errors.New("no auth token")
	// 検証に失敗（外部サービスのエラー詳細は外に出さない）
	ErrInvalidToken = errors.New("invalid auth token")
	// 検証済みトークンにsubjectが無い
	ErrMissingSubject = errors.New("token has no subject")
)

// 外部ID基盤が検証したトークンのclaim。
type Claims struct {
	UID           string
	Email         string
	EmailVerified bool

	// アプリ側で付与するrole claim（admin/customer）。無いこともある。
	Role string
}

// 外部ID基盤のトークン検証の約束。
// 実体はbootstrapで一度だけ生成してDIする（importタイミングでの初期化はしない）。
type Verifier interface {
	Verify(ctx context.Context, idToken string) (Claims, error)
}
