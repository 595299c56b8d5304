package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ecomart/internal/domain/model"
)

func TestVoucherUsecase_CreateVoucher_GeneratesCode(t *testing.T) {
	vRepo := new(voucherRepoMock)
	uc := NewVoucherUsecase(vRepo)

	vRepo.On("ExistsByCode", mock.Anything, mock.MatchedBy(func(code string) bool {
		if len(code) != 8 {
			return false
		}
		for i := 0; i < len(code); i++ {
			if code[i] < 'A' || code[i] > 'Z' {
				return false
			}
		}
		return true
	})).Return(false, nil)
	vRepo.On("Create", mock.Anything, mock.MatchedBy(func(v model.Voucher) bool {
		return len(v.Code) == 8 && v.DiscountPercent == 10 && v.IsActive
	})).Return(model.Voucher{ID: 1}, nil)

	_, err := uc.CreateVoucher(context.Background(), CreateVoucherInput{
		DiscountPercent: 10,
		Quantity:        5,
		MinOrderValue:   decimal.NewFromInt(100000),
		StartDate:       time.Now(),
		ExpiryDate:      time.Now().Add(24 * time.Hour),
	})
	assert.NoError(t, err)
	vRepo.AssertExpectations(t)
}

func TestVoucherUsecase_CreateVoucher_CustomCodeUppercased(t *testing.T) {
	vRepo := new(voucherRepoMock)
	uc := NewVoucherUsecase(vRepo)

	vRepo.On("ExistsByCode", mock.Anything, "SAVE10").Return(false, nil)
	vRepo.On("Create", mock.Anything, mock.MatchedBy(func(v model.Voucher) bool {
		return v.Code == "SAVE10"
	})).Return(model.Voucher{ID: 1, Code: "SAVE10"}, nil)

	out, err := uc.CreateVoucher(context.Background(), CreateVoucherInput{
		Code:            " save10 ",
		DiscountPercent: 10,
		Quantity:        1,
		StartDate:       time.Now(),
		ExpiryDate:      time.Now().Add(time.Hour),
	})
	assert.NoError(t, err)
	assert.Equal(t, "SAVE10", out.Code)
}

func TestVoucherUsecase_CreateVoucher_DuplicateCode(t *testing.T) {
	vRepo := new(voucherRepoMock)
	uc := NewVoucherUsecase(vRepo)

	vRepo.On("ExistsByCode", mock.Anything, "SAVE10").Return(true, nil)

	_, err := uc.CreateVoucher(context.Background(), CreateVoucherInput{
		Code:            "SAVE10",
		DiscountPercent: 10,
		Quantity:        1,
		StartDate:       time.Now(),
		ExpiryDate:      time.Now().Add(time.Hour),
	})
	assertErrContains(t, err, "code already exists")
	vRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestVoucherUsecase_CreateVoucher_Validation(t *testing.T) {
	uc := NewVoucherUsecase(new(voucherRepoMock))
	now := time.Now()

	_, err := uc.CreateVoucher(context.Background(), CreateVoucherInput{
		DiscountPercent: 0, Quantity: 1, StartDate: now, ExpiryDate: now.Add(time.Hour),
	})
	assertErrContains(t, err, "invalid discount")

	_, err = uc.CreateVoucher(context.Background(), CreateVoucherInput{
		DiscountPercent: 101, Quantity: 1, StartDate: now, ExpiryDate: now.Add(time.Hour),
	})
	assertErrContains(t, err, "invalid discount")

	_, err = uc.CreateVoucher(context.Background(), CreateVoucherInput{
		DiscountPercent: 10, Quantity: 0, StartDate: now, ExpiryDate: now.Add(time.Hour),
	})
	assertErrContains(t, err, "invalid quantity")

	// 期限が開始より前
	_, err = uc.CreateVoucher(context.Background(), CreateVoucherInput{
		DiscountPercent: 10, Quantity: 1, StartDate: now, ExpiryDate: now.Add(-time.Hour),
	})
	assertErrContains(t, err, "invalid date range")
}
