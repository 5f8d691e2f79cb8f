package openweather

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lox/weatherchat/internal/forecast"
	"github.com/lox/weatherchat/internal/models"
)

var ErrMalformedPayload = errors.New("malformed payload")

// Place is one geocoding candidate.
type Place struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}

type geocodeEntry struct {
	Name    *string  `json:"name"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Country string   `json:"country"`
	State   string   `json:"state"`
}

// DecodeGeocode parses a direct geocoding response, which must be a JSON list.
func DecodeGeocode(body []byte) ([]Place, error) {
	var entries []geocodeEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: geocode: expected a list: %v", ErrMalformedPayload, err)
	}

	places := make([]Place, 0, len(entries))
	for i, e := range entries {
		if e.Name == nil || e.Lat == nil || e.Lon == nil {
			return nil, fmt.Errorf("%w: geocode[%d]: name, lat and lon are required", ErrMalformedPayload, i)
		}
		places = append(places, Place{
			Name:    *e.Name,
			Lat:     *e.Lat,
			Lon:     *e.Lon,
			Country: e.Country,
			State:   e.State,
		})
	}
	return places, nil
}

// OneCallResponse is the subset of the One Call 3.0 payload we use.
type OneCallResponse struct {
	Lat            float64         `json:"lat"`
	Lon            float64         `json:"lon"`
	Timezone       string          `json:"timezone"`
	TimezoneOffset *int64          `json:"timezone_offset"`
	Daily          []DailyForecast `json:"daily"`
}

type DailyForecast struct {
	Dt      *int64     `json:"dt"`
	Summary *string    `json:"summary"`
	Temp    *DailyTemp `json:"temp"`
	Clouds  *float64   `json:"clouds"`
	Rain    *float64   `json:"rain"`
	UVI     *float64   `json:"uvi"`
}

type DailyTemp struct {
	Day *float64 `json:"day"`
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// DecodeOneCall parses and validates a One Call payload.
func DecodeOneCall(body []byte) (*OneCallResponse, error) {
	var data OneCallResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: onecall: %v", ErrMalformedPayload, err)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

// Validate checks every field the normalizer relies on. rain is optional.
func (r *OneCallResponse) Validate() error {
	if r.TimezoneOffset == nil {
		return fmt.Errorf("%w: onecall: timezone_offset missing", ErrMalformedPayload)
	}
	if r.Daily == nil {
		return fmt.Errorf("%w: onecall: daily missing", ErrMalformedPayload)
	}
	for i, d := range r.Daily {
		var missing string
		switch {
		case d.Dt == nil:
			missing = "dt"
		case d.Summary == nil:
			missing = "summary"
		case d.Temp == nil:
			missing = "temp"
		case d.Temp.Day == nil:
			missing = "temp.day"
		case d.Temp.Min == nil:
			missing = "temp.min"
		case d.Temp.Max == nil:
			missing = "temp.max"
		case d.Clouds == nil:
			missing = "clouds"
		case d.UVI == nil:
			missing = "uvi"
		}
		if missing != "" {
			return fmt.Errorf("%w: onecall: daily[%d].%s missing", ErrMalformedPayload, i, missing)
		}
	}
	return nil
}

// Offset returns the UTC offset in seconds. Call only after Validate.
func (r *OneCallResponse) Offset() int64 {
	return *r.TimezoneOffset
}

// Records converts validated daily entries for the normalizer.
func (r *OneCallResponse) Records() []forecast.DailyRecord {
	records := make([]forecast.DailyRecord, 0, len(r.Daily))
	for _, d := range r.Daily {
		records = append(records, forecast.DailyRecord{
			Timestamp: *d.Dt,
			Summary:   *d.Summary,
			Temperature: models.Temperature{
				Day: *d.Temp.Day,
				Min: *d.Temp.Min,
				Max: *d.Temp.Max,
			},
			Clouds: *d.Clouds,
			Rain:   d.Rain,
			UVI:    *d.UVI,
		})
	}
	return records
}
