package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ecomart/internal/domain/model"
	"ecomart/internal/identity"
	repo "ecomart/internal/repository"
)

type verifierMock struct{ mock.Mock }

func (m *verifierMock) Verify(ctx context.Context, idToken string) (identity.Claims, error) {
	args := m.Called(ctx, idToken)
	c, _ := args.Get(0).(identity.Claims)
	return c, args.Error(1)
}

type authFixture struct {
	uc       *AuthUsecase
	verifier *verifierMock
	userRepo *userRepoMock
	cartRepo *cartRepoMock
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		verifier: new(verifierMock),
		userRepo: new(userRepoMock),
		cartRepo: new(cartRepoMock),
	}
	f.uc = NewAuthUsecase(f.verifier, f.userRepo, f.cartRepo)
	return f
}

func TestAuthUsecase_Register_Success(t *testing.T) {
	f := newAuthFixture()
	f.verifier.On("Verify", mock.Anything, "token-abc").Return(identity.Claims{
		UID: "uid-1", Email: "an@example.com", EmailVerified: true,
	}, nil)
	f.userRepo.On("FindByUID", mock.Anything, "uid-1").Return(nil, repo.ErrNotFound)
	f.userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.UID == "uid-1" && u.Role == model.RoleCustomer && u.Email == "an@example.com"
	})).Return(nil)
	// アカウントと同時に空カートができる
	f.cartRepo.On("GetOrCreateByUserID", mock.Anything, mock.Anything).Return(model.Cart{ID: 1}, nil)

	user, err := f.uc.Register(context.Background(), RegisterInput{
		IDToken:     "token-abc",
		FirstName:   "An",
		LastName:    "Tran",
		PhoneNumber: "0912345678",
	})
	assert.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, user.Role)

	f.userRepo.AssertExpectations(t)
	f.cartRepo.AssertExpectations(t)
}

func TestAuthUsecase_Register_EmailNotVerified(t *testing.T) {
	f := newAuthFixture()
	f.verifier.On("Verify", mock.Anything, "token-abc").Return(identity.Claims{
		UID: "uid-1", Email: "an@example.com", EmailVerified: false,
	}, nil)

	_, err := f.uc.Register(context.Background(), RegisterInput{
		IDToken: "token-abc", FirstName: "An", LastName: "Tran", PhoneNumber: "0912345678",
	})
	assertErrContains(t, err, "email not verified")
	f.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Register_DuplicateUID(t *testing.T) {
	f := newAuthFixture()
	f.verifier.On("Verify", mock.Anything, "token-abc").Return(identity.Claims{
		UID: "uid-1", EmailVerified: true,
	}, nil)
	f.userRepo.On("FindByUID", mock.Anything, "uid-1").Return(&model.User{ID: 7, UID: "uid-1"}, nil)

	_, err := f.uc.Register(context.Background(), RegisterInput{
		IDToken: "token-abc", FirstName: "An", LastName: "Tran", PhoneNumber: "0912345678",
	})
	assertErrContains(t, err, "account already exists")
}

func TestAuthUsecase_Register_InvalidPhone(t *testing.T) {
	f := newAuthFixture()

	_, err := f.uc.Register(context.Background(), RegisterInput{
		IDToken: "token-abc", FirstName: "An", LastName: "Tran", PhoneNumber: "123",
	})
	assertErrContains(t, err, "invalid phone number")
}

func TestAuthUsecase_Login_Unregistered(t *testing.T) {
	f := newAuthFixture()
	f.verifier.On("Verify", mock.Anything, "token-abc").Return(identity.Claims{UID: "uid-1"}, nil)
	f.userRepo.On("FindByUID", mock.Anything, "uid-1").Return(nil, repo.ErrNotFound)

	_, err := f.uc.Login(context.Background(), "token-abc")
	assertErrContains(t, err, "account not found")
}

func TestAuthUsecase_Login_InvalidToken(t *testing.T) {
	f := newAuthFixture()
	f.verifier.On("Verify", mock.Anything, "bad").Return(identity.Claims{}, identity.ErrInvalidToken)

	_, err := f.uc.Login(context.Background(), "bad")
	assertErrContains(t, err, "invalid token")
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	f := newAuthFixture()
	f.verifier.On("Verify", mock.Anything, "token-abc").Return(identity.Claims{UID: "uid-1"}, nil)
	f.userRepo.On("FindByUID", mock.Anything, "uid-1").Return(&model.User{ID: 7, UID: "uid-1"}, nil)
	f.userRepo.On("UpdateLastLogin", mock.Anything, int64(7), mock.Anything).Return(nil)

	user, err := f.uc.Login(context.Background(), "token-abc")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.NotNil(t, user.LastLoginAt)
}

func TestAuthUsecase_UpdateMe_PartialUpdate(t *testing.T) {
	f := newAuthFixture()
	f.userRepo.On("FindByID", mock.Anything, int64(7)).
		Return(&model.User{ID: 7, FirstName: "An", LastName: "Tran", PhoneNumber: "0912345678"}, nil)
	f.userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		// 触ったフィールドだけ変わる
		return u.FirstName == "Binh" && u.LastName == "Tran" && u.PhoneNumber == "0912345678"
	})).Return(nil)

	first := "Binh"
	user, err := f.uc.UpdateMe(context.Background(), 7, UpdateMeInput{FirstName: &first})
	assert.NoError(t, err)
	assert.Equal(t, "Binh", user.FirstName)

	f.userRepo.AssertExpectations(t)
}
