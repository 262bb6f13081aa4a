// Package weather provides the weather-conditions providers: a live HTTP
// client and a deterministic scenario provider used in demo mode. Which one
// the app wires is a construction-time decision, never global state.
package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"context"

	models "flightguard/internal"

	"github.com/wb-go/wbf/retry"
)

var (
	ErrBadStatusCode = errors.New("invalid status code from weather provider")
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	httpClient HTTPClient
	baseURL    string
	apiKey     string
	strategy   retry.Strategy
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithRetryStrategy(s retry.Strategy) Option {
	return func(c *Client) { c.strategy = s }
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.aviationweather.example/v1",
		strategy: retry.Strategy{
			Attempts: 3,
			Delay:    500 * time.Millisecond,
			Backoff:  2,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// conditionsPayload is the provider's wire shape.
type conditionsPayload struct {
	VisibilitySM  float64  `json:"visibility_sm"`
	CeilingFt     *float64 `json:"ceiling_ft"`
	WindSpeedKt   float64  `json:"wind_speed_kt"`
	WindDirDeg    *float64 `json:"wind_dir_deg"`
	TemperatureF  float64  `json:"temperature_f"`
	HumidityPct   float64  `json:"humidity_pct"`
	Precipitation bool     `json:"precipitation"`
	Thunderstorms bool     `json:"thunderstorms"`
	Icing         bool     `json:"icing"`
	CloudCoverPct *float64 `json:"cloud_cover_pct"`
	Description   string   `json:"description"`
	ObservedAt    string   `json:"observed_at"`
}

// FetchCurrent returns the current observation for a coordinate. Transient
// failures are retried per the client strategy; a final failure surfaces as
// an external-service domain error.
func (c *Client) FetchCurrent(ctx context.Context, loc models.Location) (models.WeatherConditions, error) {
	var payload conditionsPayload

	err := retry.Do(func() error {
		return c.fetchOnce(ctx, loc, &payload)
	}, c.strategy)
	if err != nil {
		return models.WeatherConditions{}, models.NewExternalError(
			fmt.Sprintf("weather provider unavailable for %s", loc.Name), err)
	}

	observedAt, err := time.Parse(time.RFC3339, payload.ObservedAt)
	if err != nil {
		observedAt = time.Now().UTC()
	}

	return models.WeatherConditions{
		VisibilityMiles: payload.VisibilitySM,
		CeilingFeet:     payload.CeilingFt,
		WindSpeedKnots:  payload.WindSpeedKt,
		WindDirection:   payload.WindDirDeg,
		TemperatureF:    payload.TemperatureF,
		HumidityPct:     payload.HumidityPct,
		Precipitation:   payload.Precipitation,
		Thunderstorms:   payload.Thunderstorms,
		Icing:           payload.Icing,
		CloudCoverPct:   payload.CloudCoverPct,
		Description:     payload.Description,
		ObservedAt:      observedAt,
	}, nil
}

func (c *Client) fetchOnce(ctx context.Context, loc models.Location, dst *conditionsPayload) error {
	u := fmt.Sprintf("%s/conditions/current?lat=%f&lon=%f", c.baseURL, loc.Latitude, loc.Longitude)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Add("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Add("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrBadStatusCode, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}
