package usecase

import (
	"math"

	"github.com/shopspring/decimal"
)

// 距離帯ごとの配送料（VND）。境界は閉区間の上限で判定する。
func ShipFeeCost(distanceKm float64) decimal.Decimal {
	switch {
	case distanceKm <= 5:
		return decimal.Zero
	case distanceKm <= 150:
		return decimal.NewFromInt(20000)
	case distanceKm <= 600:
		return decimal.NewFromInt(30000)
	default:
		extra := int64(math.Floor((distanceKm - 600) * 100))
		return decimal.NewFromInt(30000 + extra)
	}
}

// 割引は商品小計＋配送料の合算に対して掛ける。
// total * (1 - percent/100) を10進のまま計算する。
func applyDiscount(total decimal.Decimal, discountPercent int) decimal.Decimal {
	rate := decimal.NewFromInt(1).Sub(
		decimal.NewFromInt(int64(discountPercent)).Div(decimal.NewFromInt(100)),
	)
	return total.Mul(rate)
}
