package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ecomart/internal/geo"
)

const (
	geocodingBaseURL  = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	directionsBaseURL = "https://api.mapbox.com/directions/v5/mapbox/driving"
)

// Mapbox Geocoding/Directions APIを叩くクライアント。
type MapboxClient struct {
	apiKey string
	http   *http.Client
}

// DI
func NewMapboxClient(apiKey string) *MapboxClient {
	return &MapboxClient{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodingResponse struct {
	Features []struct {
		Center []float64 `json:"center"`
	} `json:"features"`
}

type directionsResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"` // メートル
	} `json:"routes"`
}

// 候補が1件でもあれば実在とみなす
func (c *MapboxClient) IsValidAddress(ctx context.Context, address string) (bool, error) {
	var res geocodingResponse
	if err := c.geocode(ctx, address, &res); err != nil {
		return false, err
	}
	return len(res.Features) > 0, nil
}

func (c *MapboxClient) Coordinates(ctx context.Context, address string) (geo.Coordinates, error) {
	var res geocodingResponse
	if err := c.geocode(ctx, address, &res); err != nil {
		return geo.Coordinates{}, err
	}
	if len(res.Features) == 0 || len(res.Features[0].Center) < 2 {
		return geo.Coordinates{}, geo.ErrNoRoute
	}
	center := res.Features[0].Center
	return geo.Coordinates{Longitude: center[0], Latitude: center[1]}, nil
}

// 両端をジオコーディングしてから走行距離（km）を出す
func (c *MapboxClient) RouteDistanceKm(ctx context.Context, from string, to string) (float64, error) {
	start, err := c.Coordinates(ctx, from)
	if err != nil {
		return 0, err
	}
	end, err := c.Coordinates(ctx, to)
	if err != nil {
		return 0, err
	}

	endpoint := fmt.Sprintf("%s/%f,%f;%f,%f",
		directionsBaseURL,
		start.Longitude, start.Latitude,
		end.Longitude, end.Latitude,
	)

	q := url.Values{}
	q.Set("access_token", c.apiKey)
	q.Set("geometries", "geojson")
	q.Set("overview", "full")

	var res directionsResponse
	if err := c.get(ctx, endpoint+"?"+q.Encode(), &res); err != nil {
		return 0, err
	}
	if len(res.Routes) == 0 {
		return 0, geo.ErrNoRoute
	}
	return res.Routes[0].Distance / 1000, nil
}

func (c *MapboxClient) geocode(ctx context.Context, address string, out *geocodingResponse) error {
	q := url.Values{}
	q.Set("access_token", c.apiKey)
	q.Set("limit", "1")

	endpoint := fmt.Sprintf("%s/%s.json?%s", geocodingBaseURL, url.PathEscape(address), q.Encode())
	return c.get(ctx, endpoint, out)
}

func (c *MapboxClient) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("mapbox: unexpected status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
