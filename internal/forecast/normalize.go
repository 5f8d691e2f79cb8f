package forecast

import (
	"time"

	"github.com/lox/weatherchat/internal/models"
)

// HorizonDays is the longest forecast the provider can return.
const HorizonDays = 16

const secondsPerDay = 24 * 60 * 60

// DailyRecord is one validated day of the provider's daily forecast.
type DailyRecord struct {
	Timestamp   int64 // unix seconds, UTC
	Summary     string
	Temperature models.Temperature
	Clouds      float64
	Rain        *float64
	UVI         float64
}

// Normalize reduces the provider records to the fields the model reasons over.
// offset is the location's UTC offset in seconds.
func Normalize(records []DailyRecord, offset int64) []models.ForecastDay {
	days := make([]models.ForecastDay, 0, len(records))
	for _, r := range records {
		day := models.ForecastDay{
			Date:        DateFor(r.Timestamp, offset),
			Summary:     r.Summary,
			Temperature: r.Temperature,
			CloudCover:  r.Clouds,
			UVIndex:     r.UVI,
		}
		if r.Rain != nil {
			rain := *r.Rain
			day.Rain = &rain
		}
		days = append(days, day)
	}
	return days
}

// DateFor returns the local calendar date of a unix timestamp shifted by offset seconds.
func DateFor(timestamp, offset int64) models.Date {
	days := floorDiv(timestamp+offset, secondsPerDay)
	return models.DateOf(time.Unix(days*secondsPerDay, 0).UTC())
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
