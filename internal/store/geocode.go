package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lox/weatherchat/internal/models"
)

// GetPlace returns the cached place for query if it was resolved within maxAge.
func (s *Store) GetPlace(query string, maxAge time.Duration) (models.Place, bool, error) {
	row := s.db.QueryRow(`
		SELECT name, country, latitude, longitude, resolved_at
		FROM geocode_cache
		WHERE query = ? AND resolved_at >= ?
	`, NormalizeQuery(query), s.timestamp().Add(-maxAge))

	var (
		p       models.Place
		country sql.NullString
	)
	err := row.Scan(&p.Name, &country, &p.Coordinates.Lat, &p.Coordinates.Lon, &p.ResolvedAt)
	if err == sql.ErrNoRows {
		return models.Place{}, false, nil
	}
	if err != nil {
		return models.Place{}, false, fmt.Errorf("get place: %w", err)
	}
	p.Country = country.String
	return p, true, nil
}

// PutPlace caches a place that query resolved to unambiguously.
func (s *Store) PutPlace(query string, p models.Place) error {
	_, err := s.db.Exec(`
		INSERT INTO geocode_cache (query, name, country, latitude, longitude, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET
			name = excluded.name,
			country = excluded.country,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			resolved_at = excluded.resolved_at
	`, NormalizeQuery(query), p.Name, p.Country, p.Coordinates.Lat, p.Coordinates.Lon, s.timestamp())
	if err != nil {
		return fmt.Errorf("put place: %w", err)
	}
	return nil
}
