package datasource

import (
	"context"
	"errors"

	"city-forecast/models"
)

var (
	// ErrNetwork is returned when the forecast request cannot be completed
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse is returned when the response body cannot be decoded into a forecast
	ErrMalformedResponse = errors.New("malformed forecast response")
)

// ForecastSource defines the interface for any daily forecast provider
type ForecastSource interface {
	// FetchForecast fetches the daily forecast for the city's coordinates
	FetchForecast(ctx context.Context, city models.City) (models.Forecast, error)

	// Name returns the source's name
	Name() string
}
