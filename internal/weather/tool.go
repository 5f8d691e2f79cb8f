package weather

import (
	"context"
	"log/slog"
	"time"

	"github.com/lox/weatherchat/internal/forecast"
	"github.com/lox/weatherchat/internal/metrics"
	"github.com/lox/weatherchat/internal/models"
	"github.com/lox/weatherchat/internal/openweather"
)

const (
	ToolName        = "get_weather"
	ToolDescription = "Get the current weather in a given location"

	// LocationField is the single required input of the tool.
	LocationField = "location"

	payloadSource = "openweather"
)

// InputSchema is the JSON schema advertised to the model for the tool input.
func InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			LocationField: map[string]any{
				"type":        "string",
				"description": "Place we want the weather for",
			},
		},
		"required": []string{LocationField},
	}
}

type ForecastFetcher interface {
	OneCall(ctx context.Context, lat, lon float64) ([]byte, error)
}

// PayloadCache archives raw forecast payloads. *store.Store implements it.
type PayloadCache interface {
	LatestRawPayload(source, endpoint, locationID string, maxAge time.Duration) ([]byte, bool, error)
	StoreRawPayload(source, endpoint, locationID string, payload []byte) (int64, error)
}

// Tool resolves a place, fetches its daily forecast and normalizes it.
type Tool struct {
	resolver *Resolver
	fetcher  ForecastFetcher
	cache    PayloadCache
	ttl      time.Duration
	logger   *slog.Logger
}

// NewTool returns a Tool. cache may be nil to always fetch.
func NewTool(resolver *Resolver, fetcher ForecastFetcher, cache PayloadCache, ttl time.Duration, logger *slog.Logger) *Tool {
	return &Tool{
		resolver: resolver,
		fetcher:  fetcher,
		cache:    cache,
		ttl:      ttl,
		logger:   logger.With("component", "weather"),
	}
}

// GetWeather returns the full provider horizon of daily forecasts for location.
// A resolution failure is returned as is and no forecast is fetched.
func (t *Tool) GetWeather(ctx context.Context, location string) (models.Forecast, error) {
	place, err := t.resolver.Resolve(ctx, location)
	if err != nil {
		return models.Forecast{}, err
	}

	key := place.Coordinates.Key()
	body, cached := t.cachedPayload(key)
	if !cached {
		body, err = t.fetcher.OneCall(ctx, place.Coordinates.Lat, place.Coordinates.Lon)
		if err != nil {
			return models.Forecast{}, &FetchError{Op: "forecast", Location: place.Name, Err: err}
		}
	}

	resp, err := openweather.DecodeOneCall(body)
	if err != nil {
		return models.Forecast{}, &FetchError{Op: "forecast", Location: place.Name, Err: err}
	}

	if !cached && t.cache != nil {
		if _, err := t.cache.StoreRawPayload(payloadSource, openweather.EndpointOneCall, key, body); err != nil {
			t.logger.Warn("archive forecast payload", "location", key, "error", err)
		}
	}

	days := forecast.Normalize(resp.Records(), resp.Offset())
	t.logger.Debug("forecast", "place", place.Name, "days", len(days), "cached", cached)
	return models.Forecast{Daily: days}, nil
}

func (t *Tool) cachedPayload(key string) ([]byte, bool) {
	if t.cache == nil {
		return nil, false
	}
	body, ok, err := t.cache.LatestRawPayload(payloadSource, openweather.EndpointOneCall, key, t.ttl)
	switch {
	case err != nil:
		t.logger.Warn("lookup cached forecast", "location", key, "error", err)
		metrics.CacheLookupsTotal.WithLabelValues("forecast", "error").Inc()
		return nil, false
	case !ok:
		metrics.CacheLookupsTotal.WithLabelValues("forecast", "miss").Inc()
		return nil, false
	}
	metrics.CacheLookupsTotal.WithLabelValues("forecast", "hit").Inc()
	return body, true
}
