package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"
)

// RouteProvider resolves a raw (traffic-free) driving duration between two
// coordinate pairs. Implementations must respect ctx cancellation; the
// service wraps each call in a hard per-provider timeout.
type RouteProvider interface {
	Name() string
	Duration(ctx context.Context, originLat, originLng, destLat, destLng float64, departure time.Time) (int, error)
}

// GoogleMatrixProvider is the primary tier, backed by the Google Distance
// Matrix API.
type GoogleMatrixProvider struct {
	APIKey string
	Client *http.Client
}

func (p *GoogleMatrixProvider) Name() string { return "google" }

// matrixResponse mirrors the fields we read from the Distance Matrix API.
type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

func (p *GoogleMatrixProvider) Duration(ctx context.Context, originLat, originLng, destLat, destLng float64, departure time.Time) (int, error) {
	if p.APIKey == "" {
		return 0, fmt.Errorf("google api key not configured")
	}

	q := url.Values{}
	q.Set("origins", fmt.Sprintf("%f,%f", originLat, originLng))
	q.Set("destinations", fmt.Sprintf("%f,%f", destLat, destLng))
	q.Set("departure_time", fmt.Sprintf("%d", departure.Unix()))
	q.Set("key", p.APIKey)
	reqURL := "https://maps.googleapis.com/maps/api/distancematrix/json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("distance matrix returned status %d", resp.StatusCode)
	}

	var matrix matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&matrix); err != nil {
		return 0, fmt.Errorf("failed to decode distance matrix response: %w", err)
	}
	if matrix.Status != "OK" || len(matrix.Rows) == 0 || len(matrix.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("distance matrix response not usable: status %s", matrix.Status)
	}
	element := matrix.Rows[0].Elements[0]
	if element.Status != "OK" {
		return 0, fmt.Errorf("no route between points: element status %s", element.Status)
	}

	return secondsToMinutes(element.Duration.Value), nil
}

func (p *GoogleMatrixProvider) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

// OSRMProvider is the backup tier, backed by an OSRM routing server.
type OSRMProvider struct {
	BaseURL string
	Client  *http.Client
}

func (p *OSRMProvider) Name() string { return "osrm" }

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Duration float64 `json:"duration"` // seconds
	} `json:"routes"`
}

func (p *OSRMProvider) Duration(ctx context.Context, originLat, originLng, destLat, destLng float64, _ time.Time) (int, error) {
	if p.BaseURL == "" {
		return 0, fmt.Errorf("osrm base url not configured")
	}

	// OSRM expects lng,lat ordering.
	reqURL := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		p.BaseURL, originLng, originLat, destLng, destLat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("osrm returned status %d", resp.StatusCode)
	}

	var route osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&route); err != nil {
		return 0, fmt.Errorf("failed to decode osrm response: %w", err)
	}
	if route.Code != "Ok" || len(route.Routes) == 0 {
		return 0, fmt.Errorf("osrm found no route: code %s", route.Code)
	}

	return secondsToMinutes(int(route.Routes[0].Duration)), nil
}

func (p *OSRMProvider) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

func secondsToMinutes(seconds int) int {
	mins := int(math.Ceil(float64(seconds) / 60))
	if mins < 1 {
		mins = 1
	}
	return mins
}
