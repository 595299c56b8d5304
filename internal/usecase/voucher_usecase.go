package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ecomart/internal/domain/model"
	repo "ecomart/internal/repository"
)

const voucherCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// クーポンの管理（roleチェックはhandler側のguardで済ませる）。
type VoucherUsecase struct {
	voucherRepo repo.VoucherRepository
}

// DI
func NewVoucherUsecase(voucherRepo repo.VoucherRepository) *VoucherUsecase {
	return &VoucherUsecase{voucherRepo: voucherRepo}
}

type CreateVoucherInput struct {
	Code            string
	Description     string
	DiscountPercent int
	MinOrderValue   decimal.Decimal
	Quantity        int
	StartDate       time.Time
	ExpiryDate      time.Time
	IsActive        *bool
}

// 作成。コード未指定なら英大文字8桁を採番する。
func (u *VoucherUsecase) CreateVoucher(ctx context.Context, in CreateVoucherInput) (model.Voucher, error) {
	if in.DiscountPercent < 1 || in.DiscountPercent > 100 {
		return model.Voucher{}, NewHTTPError(http.StatusBadRequest, "invalid discount")
	}
	if in.Quantity < 1 {
		return model.Voucher{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if in.MinOrderValue.IsNegative() {
		return model.Voucher{}, NewHTTPError(http.StatusBadRequest, "invalid min order value")
	}
	if !in.ExpiryDate.After(in.StartDate) {
		return model.Voucher{}, NewHTTPError(http.StatusBadRequest, "invalid date range")
	}

	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		generated, err := u.generateCode(ctx)
		if err != nil {
			return model.Voucher{}, err
		}
		code = generated
	} else {
		if len(code) > 8 {
			return model.Voucher{}, NewHTTPError(http.StatusBadRequest, "invalid code")
		}
		exists, err := u.voucherRepo.ExistsByCode(ctx, code)
		if err != nil {
			return model.Voucher{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if exists {
			return model.Voucher{}, NewHTTPError(http.StatusConflict, "code already exists")
		}
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	created, err := u.voucherRepo.Create(ctx, model.Voucher{
		Code:            code,
		Description:     in.Description,
		DiscountPercent: in.DiscountPercent,
		MinOrderValue:   in.MinOrderValue,
		Quantity:        in.Quantity,
		StartDate:       in.StartDate,
		ExpiryDate:      in.ExpiryDate,
		IsActive:        active,
	})
	if err != nil {
		return model.Voucher{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *VoucherUsecase) ListVouchers(ctx context.Context) ([]model.Voucher, error) {
	vouchers, err := u.voucherRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return vouchers, nil
}

func (u *VoucherUsecase) GetVoucher(ctx context.Context, id int64) (model.Voucher, error) {
	if id <= 0 {
		return model.Voucher{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := u.voucherRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Voucher{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Voucher{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return v, nil
}

func (u *VoucherUsecase) DeleteVoucher(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.voucherRepo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 英大文字8桁。衝突したら引き直す。
func (u *VoucherUsecase) generateCode(ctx context.Context) (string, error) {
	for i := 0; i < 10; i++ {
		var sb strings.Builder
		for j := 0; j < 8; j++ {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(voucherCodeAlphabet))))
			if err != nil {
				return "", NewHTTPError(http.StatusInternalServerError, "code generation failed")
			}
			sb.WriteByte(voucherCodeAlphabet[n.Int64()])
		}
		code := sb.String()

		exists, err := u.voucherRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !exists {
			return code, nil
		}
	}
	return "", NewHTTPError(http.StatusInternalServerError, "code generation failed")
}
