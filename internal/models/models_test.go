package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr error
	}{
		{name: "origin", lat: 0, lon: 0},
		{name: "paris", lat: 48.8589, lon: 2.32},
		{name: "south pole boundary", lat: -90, lon: 0},
		{name: "north pole boundary", lat: 90, lon: 0},
		{name: "antimeridian west", lat: 0, lon: -180},
		{name: "antimeridian east", lat: 0, lon: 180},
		{name: "lat below range", lat: -90.0001, lon: 0, wantErr: ErrInvalidLatitude},
		{name: "lat above range", lat: 91, lon: 0, wantErr: ErrInvalidLatitude},
		{name: "lon below range", lat: 0, lon: -180.5, wantErr: ErrInvalidLongitude},
		{name: "lon above range", lat: 0, lon: 200, wantErr: ErrInvalidLongitude},
		{name: "lat NaN", lat: math.NaN(), lon: 0, wantErr: ErrInvalidLatitude},
		{name: "lon NaN", lat: 0, lon: math.NaN(), wantErr: ErrInvalidLongitude},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCoordinates(tt.lat, tt.lon)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewCoordinates(%v, %v) error = %v, want %v", tt.lat, tt.lon, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCoordinates(%v, %v) unexpected error: %v", tt.lat, tt.lon, err)
			}
			if got.Lat != tt.lat || got.Lon != tt.lon {
				t.Errorf("NewCoordinates() = %+v, want lat=%v lon=%v", got, tt.lat, tt.lon)
			}
		})
	}
}

func TestNewCoordinates_Sweep(t *testing.T) {
	for lat := -90.0; lat <= 90; lat += 7.5 {
		for lon := -180.0; lon <= 180; lon += 15 {
			if _, err := NewCoordinates(lat, lon); err != nil {
				t.Fatalf("NewCoordinates(%v, %v) unexpected error: %v", lat, lon, err)
			}
		}
	}
	for _, lat := range []float64{-1000, -90.5, 90.5, 1000} {
		if _, err := NewCoordinates(lat, 0); err == nil {
			t.Errorf("NewCoordinates(%v, 0) expected error", lat)
		}
	}
	for _, lon := range []float64{-1000, -180.5, 180.5, 1000} {
		if _, err := NewCoordinates(0, lon); err == nil {
			t.Errorf("NewCoordinates(0, %v) expected error", lon)
		}
	}
}

func TestCoordinatesKey(t *testing.T) {
	c := Coordinates{Lat: 52.520008, Lon: 13.404954}
	if got := c.Key(); got != "52.5200,13.4050" {
		t.Errorf("Key() = %q, want 52.5200,13.4050", got)
	}
}

func TestDate_JSON(t *testing.T) {
	d := Date{Year: 2026, Month: time.March, Day: 7}

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-03-07"` {
		t.Errorf("Marshal() = %s, want \"2026-03-07\"", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}

	if err := json.Unmarshal([]byte(`"07/03/2026"`), &back); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestDate_Before(t *testing.T) {
	a := Date{Year: 2025, Month: time.December, Day: 31}
	b := Date{Year: 2026, Month: time.January, Day: 1}
	if !a.Before(b) {
		t.Error("2025-12-31 should be before 2026-01-01")
	}
	if b.Before(a) || a.Before(a) {
		t.Error("Before should be strict")
	}
}
