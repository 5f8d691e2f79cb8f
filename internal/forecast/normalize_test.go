package forecast

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/lox/weatherchat/internal/models"
)

func ptr(f float64) *float64 { return &f }

func TestDateFor(t *testing.T) {
	// 2026-10-19T00:00:00Z
	const midnight = int64(1792368000)

	tests := []struct {
		name      string
		timestamp int64
		offset    int64
		want      string
	}{
		{name: "utc midnight", timestamp: midnight, offset: 0, want: "2026-10-19"},
		{name: "utc noon", timestamp: midnight + 12*3600, offset: 0, want: "2026-10-19"},
		{name: "last second of day", timestamp: midnight + secondsPerDay - 1, offset: 0, want: "2026-10-19"},
		{name: "positive offset rolls forward", timestamp: midnight + 22*3600, offset: 7200, want: "2026-10-20"},
		{name: "negative offset rolls back", timestamp: midnight + 2*3600, offset: -5 * 3600, want: "2026-10-18"},
		{name: "half hour offset", timestamp: midnight + 19*3600, offset: 19800, want: "2026-10-20"},
		{name: "before epoch", timestamp: -1, offset: 0, want: "1969-12-31"},
		{name: "epoch", timestamp: 0, offset: 0, want: "1970-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateFor(tt.timestamp, tt.offset)
			if got.String() != tt.want {
				t.Errorf("DateFor(%d, %d) = %s, want %s", tt.timestamp, tt.offset, got, tt.want)
			}
		})
	}
}

func TestDateFor_TimeOfDayInsensitive(t *testing.T) {
	const midnight = int64(1792368000)
	for _, offset := range []int64{-36000, -3600, 0, 3600, 19800, 43200} {
		base := DateFor(midnight-offset, offset)
		for s := int64(0); s < secondsPerDay; s += 900 {
			got := DateFor(midnight-offset+s, offset)
			if got != base {
				t.Fatalf("offset %d: DateFor at +%ds = %s, want %s", offset, s, got, base)
			}
			if again := DateFor(midnight-offset+s, offset); again != got {
				t.Fatalf("DateFor not deterministic: %s != %s", again, got)
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	records := []DailyRecord{
		{
			Timestamp:   1792400400, // 2026-10-19T09:00:00Z
			Summary:     "Expect a day of partly cloudy with rain",
			Temperature: models.Temperature{Day: 14.2, Min: 9.1, Max: 16.8},
			Clouds:      75,
			Rain:        ptr(3.4),
			UVI:         2.1,
		},
		{
			Timestamp:   1792486800,
			Summary:     "Clear sky",
			Temperature: models.Temperature{Day: 15, Min: 8, Max: 18},
			Clouds:      0,
			UVI:         3,
		},
	}

	got := Normalize(records, 3600)
	if len(got) != 2 {
		t.Fatalf("len(Normalize()) = %d, want 2", len(got))
	}
	if got[0].Date.String() != "2026-10-19" {
		t.Errorf("day 0 date = %s, want 2026-10-19", got[0].Date)
	}
	if got[0].Rain == nil || *got[0].Rain != 3.4 {
		t.Errorf("day 0 rain = %v, want 3.4", got[0].Rain)
	}
	if got[0].Rain == records[0].Rain {
		t.Error("rain pointer should be copied, not shared with the input")
	}
	if got[1].Rain != nil {
		t.Errorf("day 1 rain = %v, want nil", *got[1].Rain)
	}
	if got[1].CloudCover != 0 || got[1].UVIndex != 3 || got[1].Summary != "Clear sky" {
		t.Errorf("day 1 = %+v", got[1])
	}
}

func TestNormalize_Empty(t *testing.T) {
	got := Normalize(nil, 0)
	if got == nil || len(got) != 0 {
		t.Errorf("Normalize(nil) = %v, want empty non-nil slice", got)
	}
}

func TestNormalize_SixteenDays(t *testing.T) {
	start := time.Date(2026, time.October, 19, 11, 0, 0, 0, time.UTC).Unix()
	records := make([]DailyRecord, HorizonDays)
	for i := range records {
		records[i] = DailyRecord{
			Timestamp:   start + int64(i)*secondsPerDay,
			Summary:     "day",
			Temperature: models.Temperature{Day: 20, Min: 10, Max: 25},
		}
	}

	days := Normalize(records, 7200)
	if len(days) != HorizonDays {
		t.Fatalf("len(days) = %d, want %d", len(days), HorizonDays)
	}
	seen := make(map[models.Date]bool)
	for i, d := range days {
		if seen[d.Date] {
			t.Errorf("duplicate date %s", d.Date)
		}
		seen[d.Date] = true
		if i > 0 && !days[i-1].Date.Before(d.Date) {
			t.Errorf("dates not increasing: %s then %s", days[i-1].Date, d.Date)
		}
	}
}

func TestNormalize_JSONRoundTrip(t *testing.T) {
	records := []DailyRecord{
		{Timestamp: 1792400400, Summary: "Rain", Temperature: models.Temperature{Day: 12.5, Min: 7.25, Max: 14}, Clouds: 100, Rain: ptr(12.7), UVI: 0.8},
		{Timestamp: 1792486800, Summary: "Sun", Temperature: models.Temperature{Day: 18, Min: 11, Max: 21.5}, Clouds: 5, UVI: 4.4},
	}
	want := models.Forecast{Daily: Normalize(records, -14400)}

	b, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got models.Forecast
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	var raw map[string][]map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if _, ok := raw["daily"][1]["rain"]; ok {
		t.Error("rain should be omitted when absent")
	}
	for _, key := range []string{"date", "summary", "temperature", "cloud_cover", "uv_index"} {
		if _, ok := raw["daily"][0][key]; !ok {
			t.Errorf("missing key %q in %s", key, b)
		}
	}
}
