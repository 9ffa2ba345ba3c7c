package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

const hourlyBody = `{
  "latitude": 42.7,
  "longitude": 0.93,
  "timezone": "Europe/Madrid",
  "hourly_units": {"temperature_2m": "°C", "windspeed_10m": "km/h", "snowfall": "cm"},
  "hourly": {
    "time": ["2026-02-01T00:00", "2026-02-01T01:00", "2026-02-01T02:00"],
    "temperature_2m": [-5.1, -4.8, -4.2],
    "windspeed_10m": [7.2, 8.0, 9.1],
    "snowfall": [1.4, 2.8, 0.7],
    "weathercode": [73, 71, 1]
  }
}`

func testConfig() ClientConfig {
	return ClientConfig{Timeout: 2 * time.Second, Threshold: 3, BreakerTimeout: time.Second}
}

var testResort = models.Resort{Name: "Baqueira Beret (Spain)", Latitude: 42.6998, Longitude: 0.934}

var testWindow = models.Window{
	Start: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
}

func TestFetchHourly(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"latitude":   q.Get("latitude"),
			"longitude":  q.Get("longitude"),
			"start_date": q.Get("start_date"),
			"end_date":   q.Get("end_date"),
			"hourly":     q.Get("hourly"),
			"timezone":   q.Get("timezone"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(hourlyBody))
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.URL, testConfig(), zap.NewNop())
	series, err := c.FetchHourly(context.Background(), testResort, testWindow)
	if err != nil {
		t.Fatalf("FetchHourly failed: %v", err)
	}

	want := map[string]string{
		"latitude":   "42.6998",
		"longitude":  "0.9340",
		"start_date": "2026-02-01",
		"end_date":   "2026-02-03",
		"hourly":     "temperature_2m,windspeed_10m,snowfall,weathercode",
		"timezone":   "auto",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s: got %q, want %q", k, gotQuery[k], v)
		}
	}

	if series.Resort != testResort.Name || series.Window != testWindow {
		t.Errorf("series lost resort context: %+v", series)
	}
	if series.Len() != 3 || len(series.WeatherCode) != 3 {
		t.Fatalf("expected 3 samples, got %d", series.Len())
	}
	if series.Snowfall[1] != 2.8 || series.WeatherCode[2] != 1 {
		t.Errorf("unexpected samples: %+v", series)
	}
}

type cannedClient struct {
	requests []*http.Request
	status   int
	body     string
}

func (c *cannedClient) Do(req *http.Request) (*http.Response, error) {
	c.requests = append(c.requests, req)
	return &http.Response{
		StatusCode: c.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(c.body)),
		Request:    req,
	}, nil
}

func TestFetchHourlyWithHTTPClient(t *testing.T) {
	hc := &cannedClient{status: http.StatusOK, body: hourlyBody}
	c := NewOpenMeteoClient("https://forecast.invalid/v1", testConfig(), zap.NewNop())
	c.WithHTTPClient(hc)

	series, err := c.FetchHourly(context.Background(), testResort, testWindow)
	if err != nil {
		t.Fatalf("FetchHourly failed: %v", err)
	}
	if series.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", series.Len())
	}

	if len(hc.requests) != 1 {
		t.Fatalf("expected one request through the injected client, got %d", len(hc.requests))
	}
	req := hc.requests[0]
	if req.URL.Host != "forecast.invalid" || req.URL.Path != "/v1/forecast" {
		t.Errorf("unexpected request URL %s", req.URL)
	}
	if req.Header.Get("Accept") != "application/json" {
		t.Errorf("unexpected Accept header %q", req.Header.Get("Accept"))
	}
}

func TestFetchHourlyHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": true, "reason": "Parameter 'start_date' is out of allowed range"}`))
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.URL, testConfig(), zap.NewNop())
	_, err := c.FetchHourly(context.Background(), testResort, testWindow)

	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if he.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected status %d", he.StatusCode)
	}
}

func TestParseHourlyMissingFields(t *testing.T) {
	tests := map[string]string{
		"no hourly block":  `{"latitude": 1}`,
		"no weathercode":   `{"hourly": {"temperature_2m": [1], "windspeed_10m": [1], "snowfall": [0]}}`,
		"no snowfall":      `{"hourly": {"temperature_2m": [1], "windspeed_10m": [1], "weathercode": [0]}}`,
		"null temperature": `{"hourly": {"temperature_2m": [1, null], "windspeed_10m": [1, 2], "snowfall": [0, 0], "weathercode": [0, 0]}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseHourly([]byte(body)); !errors.Is(err, ErrMissingField) {
				t.Fatalf("expected ErrMissingField, got %v", err)
			}
		})
	}
}

func TestParseHourlyKeepsMismatchedLengths(t *testing.T) {
	body := `{"hourly": {"temperature_2m": [1, 2], "windspeed_10m": [1], "snowfall": [0, 0], "weathercode": [0, 0]}}`
	series, err := ParseHourly([]byte(body))
	if err != nil {
		t.Fatalf("ParseHourly failed: %v", err)
	}
	if len(series.Temperature) != 2 || len(series.WindSpeed) != 1 {
		t.Fatalf("lengths must not be coerced: %+v", series)
	}
}

func TestParseHourlyEmpty(t *testing.T) {
	body := `{"hourly": {"temperature_2m": [], "windspeed_10m": [], "snowfall": [], "weathercode": []}}`
	series, err := ParseHourly([]byte(body))
	if err != nil {
		t.Fatalf("ParseHourly failed: %v", err)
	}
	if series.Len() != 0 {
		t.Fatalf("expected empty series, got %d samples", series.Len())
	}
}

func TestWeatherCodeDescription(t *testing.T) {
	if got := WeatherCodeDescription(75); got != "Heavy snow fall" {
		t.Errorf("got %q", got)
	}
	if got := WeatherCodeDescription(42); got != "Unknown" {
		t.Errorf("got %q", got)
	}
}
