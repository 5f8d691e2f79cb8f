package forecast

import (
	"strings"

	"github.com/lox/weatherchat/internal/models"
)

// Condition is a coarse weather category for one forecast day.
type Condition string

const (
	ConditionClearWarm    Condition = "clear_warm"
	ConditionClearCool    Condition = "clear_cool"
	ConditionPartlyCloudy Condition = "partly_cloudy"
	ConditionMostlyCloudy Condition = "mostly_cloudy"
	ConditionLightRain    Condition = "light_rain"
	ConditionHeavyRain    Condition = "heavy_rain"
	ConditionStorm        Condition = "storm"
	ConditionFog          Condition = "fog"
	ConditionSnow         Condition = "snow"
	ConditionHot          Condition = "hot"
	ConditionFrost        Condition = "frost"
)

// HeavyRainMM is the daily rain total (mm) treated as heavy regardless of the summary.
const HeavyRainMM = 10.0

var conditionIcons = map[Condition]string{
	ConditionClearWarm:    "☀️",
	ConditionClearCool:    "🌤️",
	ConditionPartlyCloudy: "⛅",
	ConditionMostlyCloudy: "☁️",
	ConditionLightRain:    "🌦️",
	ConditionHeavyRain:    "🌧️",
	ConditionStorm:        "⛈️",
	ConditionFog:          "🌫️",
	ConditionSnow:         "🌨️",
	ConditionHot:          "🥵",
	ConditionFrost:        "🥶",
}

// Icon returns an emoji for the condition.
func (c Condition) Icon() string {
	if icon, ok := conditionIcons[c]; ok {
		return icon
	}
	return "🌡️"
}

// Classify categorizes a day from its summary text, temperatures, rain and cloud cover.
func Classify(day models.ForecastDay) Condition {
	lower := strings.ToLower(day.Summary)

	// Temperature extremes take priority
	if day.Temperature.Max >= 35 {
		return ConditionHot
	}
	if day.Temperature.Min <= 2 && !strings.Contains(lower, "snow") {
		return ConditionFrost
	}

	switch {
	case strings.Contains(lower, "thunder") || strings.Contains(lower, "storm"):
		return ConditionStorm
	case strings.Contains(lower, "snow") || strings.Contains(lower, "sleet"):
		return ConditionSnow
	case strings.Contains(lower, "heavy rain") || (day.Rain != nil && *day.Rain >= HeavyRainMM):
		return ConditionHeavyRain
	case strings.Contains(lower, "rain") || strings.Contains(lower, "shower") ||
		strings.Contains(lower, "drizzle") || (day.Rain != nil && *day.Rain > 0):
		return ConditionLightRain
	case strings.Contains(lower, "fog") || strings.Contains(lower, "mist") ||
		strings.Contains(lower, "haze"):
		return ConditionFog
	}

	// Cloud cover is a percentage
	switch {
	case day.CloudCover >= 70:
		return ConditionMostlyCloudy
	case day.CloudCover >= 30:
		return ConditionPartlyCloudy
	case day.Temperature.Max >= 25:
		return ConditionClearWarm
	default:
		return ConditionClearCool
	}
}
