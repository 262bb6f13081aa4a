// Package advisor is the client for the AI ranking service that proposes and
// justifies reschedule options, and generates weather briefing text.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	models "flightguard/internal"

	"github.com/wb-go/wbf/retry"
)

var (
	ErrBadStatusCode = errors.New("invalid status code from advisory service")
	ErrBadSchema     = errors.New("advisory response failed schema validation")
)

// OptionCount is the contract: the ranker returns exactly this many options.
const OptionCount = 3

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	httpClient HTTPClient
	baseURL    string
	apiKey     string
	model      string
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

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func WithRetryStrategy(s retry.Strategy) Option {
	return func(c *Client) { c.strategy = s }
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.advisory.example/v1",
		model:      "flight-advisor-1",
		strategy: retry.Strategy{
			Attempts: 2,
			Delay:    time.Second,
			Backoff:  2,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type rankRequest struct {
	Model   string                   `json:"model"`
	Context models.RescheduleContext `json:"context"`
	Count   int                      `json:"count"`
}

type rankResponse struct {
	Options []models.RescheduleOption `json:"options"`
}

// Rank submits the context bundle and returns exactly three validated
// options. A schema-invalid response is an external failure, never a
// fabricated or truncated option set.
func (c *Client) Rank(ctx context.Context, bundle models.RescheduleContext) ([]models.RescheduleOption, error) {
	reqBody := rankRequest{Model: c.model, Context: bundle, Count: OptionCount}

	var resp rankResponse
	err := retry.Do(func() error {
		return c.post(ctx, "/rank", reqBody, &resp)
	}, c.strategy)
	if err != nil {
		return nil, models.NewExternalError("reschedule advisory service unavailable", err)
	}

	if err := validateOptions(resp.Options); err != nil {
		return nil, models.NewExternalError("reschedule advisory returned an invalid option set", err)
	}
	return resp.Options, nil
}

type briefingRequest struct {
	Model      string                   `json:"model"`
	Location   models.Location          `json:"location"`
	At         string                   `json:"at"`
	Level      models.TrainingLevel     `json:"training_level"`
	Conditions models.WeatherConditions `json:"conditions"`
}

type briefingResponse struct {
	Briefing string `json:"briefing"`
}

// GenerateBriefing produces natural-language weather briefing text for a
// location, time, and training level.
func (c *Client) GenerateBriefing(ctx context.Context, loc models.Location, at time.Time, level models.TrainingLevel, conditions models.WeatherConditions) (string, error) {
	reqBody := briefingRequest{
		Model:      c.model,
		Location:   loc,
		At:         at.UTC().Format(time.RFC3339),
		Level:      level,
		Conditions: conditions,
	}

	var resp briefingResponse
	err := retry.Do(func() error {
		return c.post(ctx, "/briefing", reqBody, &resp)
	}, c.strategy)
	if err != nil {
		return "", models.NewExternalError("briefing generation unavailable", err)
	}
	if resp.Briefing == "" {
		return "", models.NewExternalError("briefing generation returned empty text", ErrBadSchema)
	}
	return resp.Briefing, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	jsonBytes, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBytes))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
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
	return json.Unmarshal(body, out)
}

func validateOptions(options []models.RescheduleOption) error {
	if len(options) != OptionCount {
		return fmt.Errorf("%w: got %d options, want %d", ErrBadSchema, len(options), OptionCount)
	}

	seenPriorities := make(map[int]bool, OptionCount)
	for i, opt := range options {
		if opt.Priority < 1 || opt.Priority > OptionCount {
			return fmt.Errorf("%w: option %d priority %d out of range", ErrBadSchema, i, opt.Priority)
		}
		if seenPriorities[opt.Priority] {
			return fmt.Errorf("%w: duplicate priority %d", ErrBadSchema, opt.Priority)
		}
		seenPriorities[opt.Priority] = true

		if opt.Confidence < 0 || opt.Confidence > 1 {
			return fmt.Errorf("%w: option %d confidence %f out of range", ErrBadSchema, i, opt.Confidence)
		}
		if _, err := time.Parse(time.RFC3339, opt.Timestamp); err != nil {
			return fmt.Errorf("%w: option %d timestamp %q not RFC3339", ErrBadSchema, i, opt.Timestamp)
		}
	}
	return nil
}
