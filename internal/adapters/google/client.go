// internal/adapters/google/client.go
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"flex_reviews/internal/adapters/observability"
)

const detailFields = "name,rating,user_ratings_total,reviews,formatted_address"

// Client fetches place reviews from the Google Places Details API. An empty
// API key means the source is unconfigured, which the selector treats as a
// routing signal. Per-place errors are the caller's to absorb: the fan-out
// turns them into empty contributions.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) *Client {
	if base == "" {
		base = "https://maps.googleapis.com/maps/api/place"
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (c *Client) IsConfigured() bool { return c.key != "" }

var ErrNotConfigured = errors.New("google: places API key not configured")

type detailsEnvelope struct {
	Status string `json:"status"`
	Result struct {
		Name    string           `json:"name"`
		Reviews []map[string]any `json:"reviews"`
	} `json:"result"`
}

// GetPlaceReviews returns the place's own name and its raw reviews. A non-OK
// API status is an error; callers inject the operator's listing name over
// the returned place name.
func (c *Client) GetPlaceReviews(ctx context.Context, placeID string) (string, []map[string]any, error) {
	if !c.IsConfigured() {
		return "", nil, ErrNotConfigured
	}
	if err := c.rl.Wait(ctx); err != nil {
		return "", nil, err
	}

	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", detailFields)
	q.Set("key", c.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/details/json?"+q.Encode(), nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "flex-reviews/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		return "", nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("google", "place_details", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var env detailsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", nil, err
	}
	if env.Status != "OK" {
		return "", nil, fmt.Errorf("places API status %s", env.Status)
	}
	return env.Result.Name, env.Result.Reviews, nil
}
