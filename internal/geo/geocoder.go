package geo

import (
	"context"
	"errors"
)

// 2地点間の走行ルートが見つからない
var ErrNoRoute = errors.New("no route found")

// 経度・緯度の順（Mapboxのcenter配列と同じ並び）
type Coordinates struct {
	Longitude float64
	Latitude  float64
}

// 住所の実在確認と距離計算の窓口。
type Geocoder interface {
	// ジオコーダが1件でも候補を返せばtrue
	IsValidAddress(ctx context.Context, address string) (bool, error)
	Coordinates(ctx context.Context, address string) (Coordinates, error)
	// 走行ルートの距離（km）
	RouteDistanceKm(ctx context.Context, from string, to string) (float64, error)
}
