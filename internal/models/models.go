package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

// Coordinates is a validated latitude/longitude pair. Construct with NewCoordinates.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewCoordinates validates lat and lon. Out of range values are rejected, never clamped.
func NewCoordinates(lat, lon float64) (Coordinates, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("%w: got %v", ErrInvalidLatitude, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Coordinates{}, fmt.Errorf("%w: got %v", ErrInvalidLongitude, lon)
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}

// Key returns a stable identifier for caching, rounded to roughly 10m.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Place is a resolved location.
type Place struct {
	Name        string
	Country     string
	Coordinates Coordinates
	ResolvedAt  time.Time
}

type Temperature struct {
	Day float64 `json:"day"` // mean
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ForecastDay is the per-day shape handed to the model.
type ForecastDay struct {
	Date        Date        `json:"date"`
	Summary     string      `json:"summary"`
	Temperature Temperature `json:"temperature"`
	CloudCover  float64     `json:"cloud_cover"`
	Rain        *float64    `json:"rain,omitempty"`
	UVIndex     float64     `json:"uv_index"`
}

type Forecast struct {
	Daily []ForecastDay `json:"daily"`
}
