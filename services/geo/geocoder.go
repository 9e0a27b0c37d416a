package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chefdispatch/models"
	"chefdispatch/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const geocodeCacheTTL = 30 * 24 * time.Hour

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	ResolveAddress(ctx context.Context, address string) (*models.GeoResult, error)
}

// GoogleGeocoder implements Geocoder against the Google Geocoding API with
// a Redis cache in front. Address strings are long-lived, so hits are
// cached for a month.
type GoogleGeocoder struct {
	APIKey string
	Cache  *redis.Client
	Client *http.Client
	Logger *zap.Logger
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"`
		} `json:"geometry"`
		PartialMatch bool `json:"partial_match"`
	} `json:"results"`
}

func (g *GoogleGeocoder) ResolveAddress(ctx context.Context, address string) (*models.GeoResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}

	key := utils.GeoCachePrefix + strings.ToLower(address)
	if cached := g.cacheLookup(ctx, key); cached != nil {
		return cached, nil
	}

	if g.APIKey == "" {
		return nil, fmt.Errorf("google api key not configured")
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.APIKey)
	reqURL := "https://maps.googleapis.com/maps/api/geocode/json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	var data geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if data.Status != "OK" || len(data.Results) == 0 {
		// ZERO_RESULTS is a normal negative outcome, not a provider fault.
		return &models.GeoResult{Address: address, Valid: false}, nil
	}

	first := data.Results[0]
	confidence := 1.0
	if first.PartialMatch || first.Geometry.LocationType == "APPROXIMATE" {
		confidence = 0.5
	}

	result := &models.GeoResult{
		Address:    first.FormattedAddress,
		Location:   models.NewGeoPoint(first.Geometry.Location.Lat, first.Geometry.Location.Lng),
		Valid:      true,
		Confidence: confidence,
	}
	g.cacheStore(ctx, key, result)
	return result, nil
}

func (g *GoogleGeocoder) cacheLookup(ctx context.Context, key string) *models.GeoResult {
	if g.Cache == nil {
		return nil
	}
	data, err := g.Cache.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var result models.GeoResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil
	}
	return &result
}

func (g *GoogleGeocoder) cacheStore(ctx context.Context, key string, result *models.GeoResult) {
	if g.Cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := g.Cache.Set(ctx, key, data, geocodeCacheTTL).Err(); err != nil {
		g.logger().Warn("failed to cache geocode result", zap.String("key", key), zap.Error(err))
	}
}

func (g *GoogleGeocoder) client() *http.Client {
	if g.Client != nil {
		return g.Client
	}
	return http.DefaultClient
}

func (g *GoogleGeocoder) logger() *zap.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return utils.GetLogger()
}
