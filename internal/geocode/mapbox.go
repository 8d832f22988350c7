package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aeternum/journeys-backend/internal/domain"
)

const (
	defaultBaseURL = "https://api.mapbox.com"
	// Only settlements and larger make sense as journey destinations.
	searchTypes = "place,region,country"
	searchLimit = 8
	dialTimeout = 10 * time.Second
)

// Client queries a Mapbox-compatible forward-geocoding endpoint. It owns no
// retry or caching behavior; callers decide how failures degrade.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewClient(baseURL, accessToken string) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL:     base,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: dialTimeout},
	}
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID        string    `json:"id"`
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"`
}

// Search resolves a free-text query into candidate places. The center pair
// arrives as [longitude, latitude]; features without a usable center are
// dropped.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Place, error) {
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json", c.baseURL, url.PathEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("access_token", c.accessToken)
	q.Set("types", searchTypes)
	q.Set("limit", fmt.Sprintf("%d", searchLimit))
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var collection featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}

	places := make([]domain.Place, 0, len(collection.Features))
	for _, f := range collection.Features {
		if len(f.Center) < 2 || strings.TrimSpace(f.PlaceName) == "" {
			continue
		}
		places = append(places, domain.Place{
			ID:        f.ID,
			Name:      f.PlaceName,
			Longitude: f.Center[0],
			Latitude:  f.Center[1],
		})
	}
	return places, nil
}
