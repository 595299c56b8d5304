package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	id "ecomart/internal/identity"
)

// Firebase Admin SDKによるidentity.Verifier実装。
type FirebaseVerifier struct {
	client *firebaseauth.Client
}

// NewFirebaseVerifier はサービスアカウントJSONからクライアントを生成する。
// プロセス全体で1つだけ作り、handlerへDIする。
func NewFirebaseVerifier(ctx context.Context, credentialsFile string) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (id.Claims, error) {
	if idToken == "" {
		return id.Claims{}, id.ErrNoToken
	}

	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		// 失効・改ざん等の詳細は呼び出し側に見せない
		return id.Claims{}, id.ErrInvalidToken
	}
	if tok.UID == "" {
		return id.Claims{}, id.ErrMissingSubject
	}

	return id.Claims{
		UID:           tok.UID,
		Email:         claimString(tok.Claims["email"]),
		EmailVerified: claimBool(tok.Claims["email_verified"]),
		Role:          claimString(tok.Claims["role"]),
	}, nil
}

func claimString(v any) string {
	s, _ := v.(string)
	return s
}

func claimBool(v any) bool {
	b, _ := v.(bool)
	return b
}
