package advisor_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	models "flightguard/internal"
	"flightguard/internal/advisor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
)

type mockHTTPClient struct {
	doFunc func(*http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

var noRetry = retry.Strategy{Attempts: 1, Delay: time.Millisecond, Backoff: 1}

func newTestClient(doFunc func(*http.Request) (*http.Response, error)) *advisor.Client {
	return advisor.NewClient(
		advisor.WithHTTPClient(&mockHTTPClient{doFunc: doFunc}),
		advisor.WithBaseURL("https://advisor.test/v1"),
		advisor.WithRetryStrategy(noRetry),
	)
}

func validOptions() []models.RescheduleOption {
	return []models.RescheduleOption{
		{Timestamp: "2025-06-02T14:00:00Z", Priority: 1, Confidence: 0.9, Reasoning: "clear window", ExpectedWeather: "VFR"},
		{Timestamp: "2025-06-02T16:00:00Z", Priority: 2, Confidence: 0.7, Reasoning: "light winds", ExpectedWeather: "VFR"},
		{Timestamp: "2025-06-03T08:00:00Z", Priority: 3, Confidence: 0.5, Reasoning: "early morning calm", ExpectedWeather: "MVFR"},
	}
}

func rankResponseBody(options []models.RescheduleOption) io.ReadCloser {
	body, _ := json.Marshal(map[string]interface{}{"options": options})
	return io.NopCloser(bytes.NewReader(body))
}

func TestRankReturnsThreeOptions(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.True(t, strings.HasSuffix(req.URL.Path, "/rank"))
		return &http.Response{StatusCode: http.StatusOK, Body: rankResponseBody(validOptions())}, nil
	})

	got, err := client.Rank(context.Background(), models.RescheduleContext{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Priority)
	assert.Equal(t, "clear window", got[0].Reasoning)
}

func TestRankRejectsWrongCount(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: rankResponseBody(validOptions()[:2])}, nil
	})

	_, err := client.Rank(context.Background(), models.RescheduleContext{})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindExternal))
	assert.ErrorIs(t, err, advisor.ErrBadSchema)
}

func TestRankRejectsBadSchema(t *testing.T) {
	cases := []struct {
		name   string
		mutate func([]models.RescheduleOption)
	}{
		{"priority out of range", func(o []models.RescheduleOption) { o[0].Priority = 4 }},
		{"duplicate priority", func(o []models.RescheduleOption) { o[1].Priority = 1 }},
		{"confidence above one", func(o []models.RescheduleOption) { o[2].Confidence = 1.2 }},
		{"bad timestamp", func(o []models.RescheduleOption) { o[0].Timestamp = "tomorrow-ish" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			options := validOptions()
			tc.mutate(options)
			client := newTestClient(func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusOK, Body: rankResponseBody(options)}, nil
			})

			_, err := client.Rank(context.Background(), models.RescheduleContext{})
			require.Error(t, err)
			assert.ErrorIs(t, err, advisor.ErrBadSchema)
		})
	}
}

func TestRankServerFailureIsExternal(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusInternalServerError, Body: io.NopCloser(strings.NewReader(""))}, nil
	})

	_, err := client.Rank(context.Background(), models.RescheduleContext{})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindExternal))
}

func TestGenerateBriefing(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.True(t, strings.HasSuffix(req.URL.Path, "/briefing"))
		body, _ := json.Marshal(map[string]string{"briefing": "VFR flight not recommended after 15:00 local."})
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body))}, nil
	})

	text, err := client.GenerateBriefing(context.Background(),
		models.Location{Name: "KAUS"},
		time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
		models.LevelStudentPilot,
		models.WeatherConditions{VisibilityMiles: 10},
	)
	require.NoError(t, err)
	assert.Contains(t, text, "VFR")
}

func TestGenerateBriefingEmptyTextIsExternal(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		body, _ := json.Marshal(map[string]string{"briefing": ""})
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body))}, nil
	})

	_, err := client.GenerateBriefing(context.Background(), models.Location{Name: "KAUS"},
		time.Now(), models.LevelPrivatePilot, models.WeatherConditions{})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindExternal))
}
