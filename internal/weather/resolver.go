package weather

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lox/weatherchat/internal/metrics"
	"github.com/lox/weatherchat/internal/models"
	"github.com/lox/weatherchat/internal/openweather"
)

type Geocoder interface {
	Geocode(ctx context.Context, query string, limit int) ([]openweather.Place, error)
}

// PlaceCache stores places that resolved unambiguously. *store.Store implements it.
type PlaceCache interface {
	GetPlace(query string, maxAge time.Duration) (models.Place, bool, error)
	PutPlace(query string, p models.Place) error
}

// Resolver maps free text to a single place using the provider's best match.
type Resolver struct {
	geocoder Geocoder
	cache    PlaceCache
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewResolver returns a Resolver. cache may be nil to disable caching.
func NewResolver(geocoder Geocoder, cache PlaceCache, ttl time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		cache:    cache,
		ttl:      ttl,
		logger:   logger.With("component", "resolver"),
		now:      time.Now,
	}
}

// Resolve asks the geocoder for one candidate. Zero or several candidates are an error;
// the resolver never guesses between places.
func (r *Resolver) Resolve(ctx context.Context, location string) (models.Place, error) {
	query := strings.TrimSpace(location)
	if query == "" {
		return models.Place{}, &ResolutionError{Location: location, Err: ErrEmptyLocation}
	}

	if place, ok := r.cached(query); ok {
		return place, nil
	}

	candidates, err := r.geocoder.Geocode(ctx, query, 1)
	if err != nil {
		return models.Place{}, &FetchError{Op: "geocode", Location: query, Err: err}
	}

	switch len(candidates) {
	case 0:
		return models.Place{}, &ResolutionError{Location: query, Err: ErrLocationNotFound}
	case 1:
	default:
		return models.Place{}, &ResolutionError{Location: query, Candidates: len(candidates), Err: ErrLocationAmbiguous}
	}

	c := candidates[0]
	coords, err := models.NewCoordinates(c.Lat, c.Lon)
	if err != nil {
		return models.Place{}, &ResolutionError{Location: query, Candidates: 1, Err: err}
	}

	place := models.Place{
		Name:        c.Name,
		Country:     c.Country,
		Coordinates: coords,
		ResolvedAt:  r.now().UTC(),
	}
	r.logger.Debug("resolved location", "query", query, "name", place.Name, "country", place.Country, "coords", coords.Key())

	if r.cache != nil {
		if err := r.cache.PutPlace(query, place); err != nil {
			r.logger.Warn("cache place", "query", query, "error", err)
		}
	}
	return place, nil
}

func (r *Resolver) cached(query string) (models.Place, bool) {
	if r.cache == nil {
		return models.Place{}, false
	}
	place, ok, err := r.cache.GetPlace(query, r.ttl)
	switch {
	case err != nil:
		r.logger.Warn("lookup cached place", "query", query, "error", err)
		metrics.CacheLookupsTotal.WithLabelValues("geocode", "error").Inc()
		return models.Place{}, false
	case !ok:
		metrics.CacheLookupsTotal.WithLabelValues("geocode", "miss").Inc()
		return models.Place{}, false
	}
	metrics.CacheLookupsTotal.WithLabelValues("geocode", "hit").Inc()
	return place, true
}
