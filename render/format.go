package render

import (
	"strconv"
	"strings"
	"time"

	"city-forecast/models"

	"github.com/goodsign/monday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NotAvailable is displayed in place of a missing temperature
const NotAvailable = "N/A"

// Humanize turns a weather code into a label: underscores become spaces and
// each word gets an upper-case first letter. "light_rain" gives "Light Rain",
// "lightrain" gives "Lightrain".
func Humanize(code string) string {
	if code == "" {
		return ""
	}
	// A Caser keeps state, so each call gets its own
	caser := cases.Title(language.Und, cases.NoLower)
	return caser.String(strings.ReplaceAll(code, "_", " "))
}

// FormatTemperature renders a Celsius value, or N/A when it is absent
func FormatTemperature(celsius *float64) string {
	if celsius == nil || *celsius == models.MissingValue {
		return NotAvailable
	}
	return strconv.FormatFloat(*celsius, 'f', -1, 64) + "°C"
}

// FormatDate renders a date with localized day and month names
func FormatDate(date time.Time, layout string, locale monday.Locale) string {
	return monday.Format(date, layout, locale)
}
