package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OpenWeatherAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherchat_openweather_api_calls_total",
			Help: "Total OpenWeather API calls",
		},
		[]string{"endpoint", "status"},
	)

	OpenWeatherAPILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherchat_openweather_api_latency_seconds",
			Help:    "OpenWeather API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ModelCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherchat_model_calls_total",
			Help: "Total language model calls",
		},
		[]string{"status"},
	)

	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherchat_tool_calls_total",
			Help: "Total tool invocations requested by the model",
		},
		[]string{"tool", "status"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherchat_cache_lookups_total",
			Help: "Geocode and forecast cache lookups",
		},
		[]string{"cache", "result"},
	)
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics: shutdown", "error", err)
		}
	}()

	logger.Debug("metrics: listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
