package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/accessibility-etl/internal/domain"
	"github.com/couchcryptid/accessibility-etl/internal/observability"
	"golang.org/x/time/rate"
)

// ErrNoAddress is returned when Nominatim answers without an address block,
// e.g. for coordinates in the sea.
var ErrNoAddress = errors.New("nominatim: no address in response")

// Client implements domain.Geocoder using the Nominatim reverse API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RatePerSecond caps outgoing requests. The public instance allows one
	// request per second per application.
	RatePerSecond float64
}

// NewClient creates a Nominatim reverse geocoding client.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1),
		metrics: metrics,
		logger:  logger,
	}
}

// ReverseGeocode converts coordinates to address details.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	params := url.Values{
		"lat":            {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(lon, 'f', -1, 64)},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	result, err := c.doRequest(ctx, c.baseURL+"/reverse?"+params.Encode())
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, ErrNoAddress):
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return result, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.GeocodingResult{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}
	if r.Error != "" {
		return domain.GeocodingResult{}, fmt.Errorf("%w: %s", ErrNoAddress, r.Error)
	}
	if len(r.Address) == 0 {
		return domain.GeocodingResult{}, ErrNoAddress
	}

	c.logger.Debug("reverse geocoded", "display_name", r.DisplayName)
	return r.toResult(), nil
}

// Nominatim API response types.

type response struct {
	Type        string            `json:"type"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

// toResult picks address parts, falling back neighbourhood→suburb and
// city→town.
func (r response) toResult() domain.GeocodingResult {
	return domain.GeocodingResult{
		Street:       r.Address["road"],
		Neighborhood: firstNonEmpty(r.Address["neighbourhood"], r.Address["suburb"]),
		City:         firstNonEmpty(r.Address["city"], r.Address["town"]),
		PostalCode:   r.Address["postcode"],
		PlaceType:    r.Type,
		DisplayName:  r.DisplayName,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
