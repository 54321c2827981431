// Package render turns forecast days into display cards and HTML.
package render

import (
	"path"

	"city-forecast/models"

	"github.com/goodsign/monday"
)

const (
	// MaxDays is the number of cards shown for one forecast
	MaxDays = models.ForecastDays

	// DefaultDateLayout is the card date format, e.g. "Mon, Jan 2"
	DefaultDateLayout = "Mon, Jan 2"
	// DefaultLocale names days and months in US English
	DefaultLocale = monday.LocaleEnUS
	// DefaultImagePrefix is where icon files are served from
	DefaultImagePrefix = "/images/"
)

// Card is the display form of one forecast day
type Card struct {
	DateLabel string `json:"dateLabel"`
	City      string `json:"city"`
	Icon      string `json:"icon"`
	IconAlt   string `json:"iconAlt"`
	Weather   string `json:"weather"`
	High      string `json:"high"`
	Low       string `json:"low"`
}

// Options configures a Renderer. Zero fields fall back to the defaults.
type Options struct {
	Locale      string
	DateLayout  string
	ImagePrefix string
}

// Renderer builds cards for forecast days
type Renderer struct {
	locale      monday.Locale
	dateLayout  string
	imagePrefix string
}

// NewRenderer creates a renderer
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		locale:      DefaultLocale,
		dateLayout:  DefaultDateLayout,
		imagePrefix: DefaultImagePrefix,
	}
	if opts.Locale != "" {
		r.locale = monday.Locale(opts.Locale)
	}
	if opts.DateLayout != "" {
		r.dateLayout = opts.DateLayout
	}
	if opts.ImagePrefix != "" {
		r.imagePrefix = opts.ImagePrefix
	}
	return r
}

// Cards renders at most MaxDays cards, in the order the days were given.
// Every call produces a fresh slice; nothing is carried over from earlier calls.
func (r *Renderer) Cards(cityName string, days []models.ForecastDay) []Card {
	if len(days) > MaxDays {
		days = days[:MaxDays]
	}

	cards := make([]Card, 0, len(days))
	for _, day := range days {
		cards = append(cards, Card{
			DateLabel: FormatDate(day.Date, r.dateLayout, r.locale),
			City:      cityName,
			Icon:      r.iconURL(IconFor(day.WeatherCode)),
			IconAlt:   day.WeatherCode,
			Weather:   Humanize(day.WeatherCode),
			High:      FormatTemperature(day.HighC),
			Low:       FormatTemperature(day.LowC),
		})
	}
	return cards
}

func (r *Renderer) iconURL(file string) string {
	if r.imagePrefix == "" || r.imagePrefix[len(r.imagePrefix)-1] == '/' {
		return r.imagePrefix + file
	}
	return path.Join(r.imagePrefix, file)
}
