package models

import (
	"fmt"
	"time"
)

// MissingValue is the number the forecast API reports when it has no data
const MissingValue = -9999

// ForecastDays is the length of a daily forecast; later entries are ignored
const ForecastDays = 7

// ForecastDay is one day of a daily forecast summary
type ForecastDay struct {
	Date        time.Time `json:"date"`        // calendar date, midnight local time
	WeatherCode string    `json:"weatherCode"` // provider condition code, e.g. "pcloudy"
	HighC       *float64  `json:"highC"`       // nil when unavailable
	LowC        *float64  `json:"lowC"`        // nil when unavailable
}

// Forecast is the chronological list of days returned for one city
type Forecast struct {
	Provider string        `json:"provider"`
	City     City          `json:"city"`
	Days     []ForecastDay `json:"days"`
	Updated  time.Time     `json:"updated"`
}

// Temperature maps the provider's raw reading to an optional value.
// nil and MissingValue both mean "not available".
func Temperature(raw *float64) *float64 {
	if raw == nil || *raw == MissingValue {
		return nil
	}
	v := *raw
	return &v
}

// DecodeDate turns an eight digit YYYYMMDD value into a calendar date
func DecodeDate(compact int) (time.Time, error) {
	if compact < 10000101 || compact > 99991231 {
		return time.Time{}, fmt.Errorf("date %d is not in YYYYMMDD form", compact)
	}

	year := compact / 10000
	month := (compact / 100) % 100
	day := compact % 100

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes overflow, so 20240231 would silently become March 2nd
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, fmt.Errorf("date %d is not a valid calendar date", compact)
	}
	return date, nil
}
