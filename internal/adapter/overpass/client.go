// Package overpass fetches wheelchair accessibility data from OpenStreetMap
// through the Overpass API.
package overpass

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
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
)

// Extra columns carried by OSM-sourced tables.
const (
	ColumnOSMID            = "osm_id"
	ColumnWheelchair       = "wheelchair"
	ColumnToiletWheelchair = "toilets:wheelchair"
)

// categoryTags are checked in order to derive a place category.
var categoryTags = []string{"amenity", "shop", "tourism", "leisure", "office", "healthcare", "public_transport"}

const (
	maxAttempts    = 4
	initialBackoff = 2 * time.Second
	maxBackoff     = 30 * time.Second
)

// Client queries an Overpass API interpreter endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	backoff    time.Duration
}

// NewClient creates an Overpass client.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		backoff:    initialBackoff,
	}
}

// busyError is returned for rate-limit and gateway statuses that Overpass
// instances emit under load.
type busyError struct {
	status int
	body   string
}

func (e *busyError) Error() string {
	return fmt.Sprintf("overpass API busy: status %d: %s", e.status, e.body)
}

func isBusy(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Query returns the Overpass QL selecting every feature tagged "wheelchair",
// plus nodes with wheelchair-accessible toilets, inside the named
// administrative area. Ways and relations are reduced to their center.
func Query(area string) string {
	return fmt.Sprintf(`[out:json][timeout:25];
area["name"=%s]["boundary"="administrative"]->.searchArea;
(
  node["wheelchair"](area.searchArea);
  way["wheelchair"](area.searchArea);
  relation["wheelchair"](area.searchArea);
  node["toilets:wheelchair"="yes"](area.searchArea);
);
out center;`, strconv.Quote(area))
}

// FetchWheelchairPlaces runs the query for area and maps the result to a
// survey table with coordinates already in WGS84. Busy responses are retried
// with exponential backoff.
func (c *Client) FetchWheelchairPlaces(ctx context.Context, area string) (domain.Table, error) {
	backoff := c.backoff
	for attempt := 1; ; attempt++ {
		elements, err := c.fetch(ctx, area)
		if err == nil {
			c.logger.Info("overpass elements fetched", "area", area, "count", len(elements))
			return toTable(elements), nil
		}

		var busy *busyError
		if !errors.As(err, &busy) || attempt >= maxAttempts {
			return domain.Table{}, err
		}
		c.logger.Warn("overpass busy, retrying",
			"status", busy.status,
			"attempt", attempt,
			"backoff", backoff,
		)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			return domain.Table{}, ctx.Err()
		}
		backoff = sharedretry.NextBackoff(backoff, maxBackoff)
	}
}

func (c *Client) fetch(ctx context.Context, area string) ([]element, error) {
	form := url.Values{"data": {Query(area)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if isBusy(resp.StatusCode) {
			return nil, &busyError{status: resp.StatusCode, body: string(body)}
		}
		return nil, fmt.Errorf("overpass API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if r.Remark != "" {
		c.logger.Warn("overpass remark", "remark", r.Remark)
	}
	return r.Elements, nil
}

// Overpass API response types.

type response struct {
	Elements []element `json:"elements"`
	Remark   string    `json:"remark"`
}

type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *latLon           `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func toTable(elements []element) domain.Table {
	t := domain.Table{
		Criteria:     []domain.Criterion{domain.CriterionTotal, domain.CriterionRestrooms},
		ExtraColumns: []string{ColumnOSMID, ColumnWheelchair, ColumnToiletWheelchair},
		Places:       make([]domain.Place, 0, len(elements)),
	}
	for _, e := range elements {
		t.Places = append(t.Places, toPlace(e))
	}
	return t
}

func toPlace(e element) domain.Place {
	geo := domain.Geo{Lat: e.Lat, Lon: e.Lon}
	if e.Center != nil {
		geo = domain.Geo{Lat: e.Center.Lat, Lon: e.Center.Lon}
	}

	return domain.Place{
		Name:     e.Tags["name"],
		Geo:      geo,
		Category: category(e.Tags),
		Labels: map[domain.Criterion]string{
			domain.CriterionTotal:     strconv.Itoa(WheelchairScore(e.Tags["wheelchair"])),
			domain.CriterionRestrooms: strconv.Itoa(ToiletScore(e.Tags["toilets:wheelchair"])),
		},
		Extra: map[string]string{
			ColumnOSMID:            e.Type + "/" + strconv.FormatInt(e.ID, 10),
			ColumnWheelchair:       e.Tags["wheelchair"],
			ColumnToiletWheelchair: e.Tags["toilets:wheelchair"],
		},
	}
}

// WheelchairScore maps an OSM wheelchair tag onto the survey's 0–4 scale.
func WheelchairScore(tag string) int {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "yes", "designated":
		return 4
	case "limited":
		return 2
	case "no":
		return 1
	default:
		return 0
	}
}

// ToiletScore maps an OSM toilets:wheelchair tag onto the survey's 0–4 scale.
func ToiletScore(tag string) int {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "yes", "designated":
		return 4
	case "no":
		return 1
	default:
		return 0
	}
}

func category(tags map[string]string) string {
	for _, key := range categoryTags {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return ""
}
