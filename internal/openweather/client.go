package openweather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/lox/weatherchat/internal/httputil"
	"github.com/lox/weatherchat/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org"

	EndpointGeocode = "geocode"
	EndpointOneCall = "onecall"

	// Units is fixed; the model is told temperatures are Celsius.
	Units = "metric"
)

var ErrMissingAPIKey = errors.New("openweather api key is required")

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// MaxRetries bounds retries of rate limited (429) calls. Other failures are not retried.
	MaxRetries    uint64
	RetryInterval time.Duration
}

// Client talks to the OpenWeather geocoding and One Call APIs.
type Client struct {
	apiKey        string
	baseURL       string
	client        *http.Client
	maxRetries    uint64
	retryInterval time.Duration
	breakers      map[string]*gobreaker.CircuitBreaker
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	retryInterval := cfg.RetryInterval
	if retryInterval <= 0 {
		retryInterval = 500 * time.Millisecond
	}

	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       baseURL,
		client:        httputil.NewClient(cfg.Timeout),
		maxRetries:    cfg.MaxRetries,
		retryInterval: retryInterval,
		breakers: map[string]*gobreaker.CircuitBreaker{
			EndpointGeocode: newBreaker(EndpointGeocode),
			EndpointOneCall: newBreaker(EndpointOneCall),
		},
	}, nil
}

func newBreaker(endpoint string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather-" + endpoint,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// Client errors say nothing about provider health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var statusErr *httputil.StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < 500 && statusErr.StatusCode != http.StatusTooManyRequests
			}
			return false
		},
	})
}

// Geocode looks up query with OpenWeather direct geocoding, returning at most limit places.
func (c *Client) Geocode(ctx context.Context, query string, limit int) ([]Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprint(limit))

	body, err := c.get(ctx, EndpointGeocode, "/geo/1.0/direct", params)
	if err != nil {
		return nil, err
	}
	return DecodeGeocode(body)
}

// OneCall fetches the raw One Call 3.0 payload for lat/lon in metric units.
// The whole provider horizon is requested; callers narrow it if they need to.
func (c *Client) OneCall(ctx context.Context, lat, lon float64) ([]byte, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.4f", lat))
	params.Set("lon", fmt.Sprintf("%.4f", lon))
	params.Set("units", Units)
	params.Set("exclude", "current,minutely,hourly,alerts")

	return c.get(ctx, EndpointOneCall, "/data/3.0/onecall", params)
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	params.Set("appid", c.apiKey)
	target := c.baseURL + path + "?" + params.Encode()
	breaker := c.breakers[endpoint]

	var body []byte
	operation := func() error {
		start := time.Now()
		result, err := breaker.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return nil, fmt.Errorf("create request: %w", err)
			}
			req.Header.Set("User-Agent", httputil.UserAgent)
			req.Header.Set("Accept", "application/json")

			resp, err := c.client.Do(req)
			if err != nil {
				return nil, redact(err)
			}
			defer resp.Body.Close()

			if err := httputil.CheckResponse(resp); err != nil {
				return nil, err
			}
			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("read body: %w", err)
			}
			return b, nil
		})
		metrics.OpenWeatherAPILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		metrics.OpenWeatherAPICallsTotal.WithLabelValues(endpoint, callStatus(err)).Inc()

		if err != nil {
			if isRateLimited(err) {
				return fmt.Errorf("%s: rate limited: %w", endpoint, err)
			}
			return backoff.Permanent(fmt.Errorf("%s: %w", endpoint, err))
		}
		body = result.([]byte)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func isRateLimited(err error) bool {
	var statusErr *httputil.StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests
}

func callStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case isRateLimited(err):
		return "rate_limited"
	default:
		return "error"
	}
}

// redact strips the query string (and with it the api key) from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, perr := url.Parse(urlErr.URL); perr == nil {
			u.RawQuery = ""
			urlErr.URL = u.String()
		}
	}
	return err
}
