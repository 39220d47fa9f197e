// Package distance resolves driving mileage between free-text addresses
// via the Google Distance Matrix API, with a memoizing cache.
package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"movebot/utils"

	"go.uber.org/zap"
)

// ErrUnavailable is the soft failure for lookups that cannot be resolved
// (bad address, quota, network). Callers surface a clarification request
// instead of failing the turn.
var ErrUnavailable = errors.New("distance unavailable")

// Service resolves mileage between addresses.
type Service interface {
	OneWayMiles(ctx context.Context, origin, destination string) (float64, error)
	RoundTripMiles(ctx context.Context, base, pickup, drop string) (float64, error)
}

// matrixResponse mirrors the slice of the Distance Matrix payload we read.
type matrixResponse struct {
	Rows []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Text string `json:"text"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
	Status string `json:"status"`
}

// GoogleMatrixService is the production implementation backed by the
// Google Distance Matrix HTTP API.
type GoogleMatrixService struct {
	apiKey string
	client *http.Client

	// cache maps normalized (origin,destination) pairs to miles. Shared
	// across sessions; read-mostly.
	cache sync.Map
}

func NewGoogleMatrixService(apiKey string) *GoogleMatrixService {
	return &GoogleMatrixService{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// cacheKey normalizes the pair so " A "/"a" hit the same entry.
func cacheKey(origin, destination string) string {
	return strings.ToLower(strings.TrimSpace(origin)) + "|" + strings.ToLower(strings.TrimSpace(destination))
}

// OneWayMiles returns the driving distance in miles from origin to
// destination. A cache hit returns without a network round-trip.
func (s *GoogleMatrixService) OneWayMiles(ctx context.Context, origin, destination string) (float64, error) {
	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return 0, ErrUnavailable
	}
	key := cacheKey(origin, destination)
	if v, ok := s.cache.Load(key); ok {
		return v.(float64), nil
	}

	miles, err := s.lookup(ctx, origin, destination)
	if err != nil {
		return 0, err
	}
	s.cache.Store(key, miles)
	return miles, nil
}

func (s *GoogleMatrixService) lookup(ctx context.Context, origin, destination string) (float64, error) {
	logger := utils.GetLogger()

	q := url.Values{}
	q.Set("origins", origin)
	q.Set("destinations", destination)
	q.Set("units", "imperial")
	q.Set("key", s.apiKey)
	endpoint := "https://maps.googleapis.com/maps/api/distancematrix/json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("distance: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error("Distance matrix request failed", zap.Error(err))
		return 0, ErrUnavailable
	}
	defer resp.Body.Close()

	var matrix matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&matrix); err != nil {
		logger.Error("Failed to decode distance matrix response", zap.Error(err))
		return 0, ErrUnavailable
	}
	if len(matrix.Rows) == 0 || len(matrix.Rows[0].Elements) == 0 {
		logger.Error("Distance matrix returned no elements", zap.String("status", matrix.Status))
		return 0, ErrUnavailable
	}
	element := matrix.Rows[0].Elements[0]
	if element.Status != "OK" {
		logger.Error("Distance matrix element not OK",
			zap.String("status", element.Status),
			zap.String("origin", origin),
			zap.String("destination", destination))
		return 0, ErrUnavailable
	}

	miles, ok := parseMiles(element.Distance.Text)
	if !ok {
		logger.Error("Unparsable distance text", zap.String("text", element.Distance.Text))
		return 0, ErrUnavailable
	}
	return miles, nil
}

// parseMiles extracts the leading number from a distance text like
// "12.4 mi" or "1,204 mi".
func parseMiles(text string) (float64, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// RoundTripMiles totals the base→pickup→drop→base route, rounded to one
// decimal mile. Any unavailable leg makes the whole route unavailable.
func (s *GoogleMatrixService) RoundTripMiles(ctx context.Context, base, pickup, drop string) (float64, error) {
	return RoundTrip(ctx, s, base, pickup, drop)
}

// RoundTrip composes the three legs over any Service implementation.
func RoundTrip(ctx context.Context, svc Service, base, pickup, drop string) (float64, error) {
	legs := [][2]string{{base, pickup}, {pickup, drop}, {drop, base}}
	total := 0.0
	for _, leg := range legs {
		miles, err := svc.OneWayMiles(ctx, leg[0], leg[1])
		if err != nil {
			return 0, err
		}
		total += miles
	}
	return math.Round(total*10) / 10, nil
}
