package repository

import (
	"context"

	"ecomart/internal/domain/model"
)

type VoucherRepository interface {
	Create(ctx context.Context, v model.Voucher) (model.Voucher, error)
	FindByID(ctx context.Context, id int64) (model.Voucher, error)
	List(ctx context.Context) ([]model.Voucher, error)
	Delete(ctx context.Context, id int64) error
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// used_count < quantity のときだけ+1する。使い切っていればfalse。
	IncrementUsedCountIfAvailable(ctx context.Context, voucherID int64) (bool, error)
}
