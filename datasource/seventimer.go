package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"city-forecast/models"
)

const (
	// DefaultSevenTimerURL is the public 7Timer! endpoint
	DefaultSevenTimerURL = "https://www.7timer.info/bin/api.pl"

	sevenTimerProduct = "civillight"
	sevenTimerOutput  = "json"
)

// SevenTimerSource fetches daily "civil light" forecasts from 7Timer!
type SevenTimerSource struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Ensure SevenTimerSource implements ForecastSource
var _ ForecastSource = (*SevenTimerSource)(nil)

// NewSevenTimerSource creates a new 7Timer! forecast source.
// An empty baseURL selects the public endpoint; a zero timeout means none.
func NewSevenTimerSource(baseURL string, timeout time.Duration, logger *slog.Logger) *SevenTimerSource {
	if baseURL == "" {
		baseURL = DefaultSevenTimerURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SevenTimerSource{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Name returns the provider name
func (s *SevenTimerSource) Name() string {
	return "7Timer"
}

// SevenTimerResponse represents the API response structure
type SevenTimerResponse struct {
	Product    string          `json:"product"`
	Init       string          `json:"init"`
	Dataseries []SevenTimerDay `json:"dataseries"`
}

// SevenTimerDay is one entry of the dataseries array
type SevenTimerDay struct {
	Date    int    `json:"date"` // YYYYMMDD
	Weather string `json:"weather"`
	Temp2m  *struct {
		Max *float64 `json:"max"`
		Min *float64 `json:"min"`
	} `json:"temp2m"`
}

// BuildURL returns the request URL for the city's coordinates
func (s *SevenTimerSource) BuildURL(city models.City) string {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(city.Latitude, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(city.Longitude, 'f', -1, 64))
	params.Add("product", sevenTimerProduct)
	params.Add("output", sevenTimerOutput)
	return s.baseURL + "?" + params.Encode()
}

// FetchForecast issues exactly one request for the city and decodes the first
// models.ForecastDays daily entries. A non-200 status is logged but the body is
// still decoded.
func (s *SevenTimerSource) FetchForecast(ctx context.Context, city models.City) (models.Forecast, error) {
	apiURL := s.BuildURL(city)
	l := s.logger.With(slog.String("city", city.Name), slog.String("url", apiURL))
	l.DebugContext(ctx, "Fetching forecast")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("%w: failed to send request: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.WarnContext(ctx, "Forecast API returned non-200 status, decoding anyway", slog.Int("status", resp.StatusCode))
	}

	rawData, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("%w: failed to read response body: %w", ErrNetwork, err)
	}

	var apiResp SevenTimerResponse
	if err := json.Unmarshal(rawData, &apiResp); err != nil {
		return models.Forecast{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if apiResp.Dataseries == nil {
		return models.Forecast{}, fmt.Errorf("%w: no dataseries in response", ErrMalformedResponse)
	}

	// Only the first week is shown, so later entries are not validated
	series := apiResp.Dataseries[:min(len(apiResp.Dataseries), models.ForecastDays)]

	forecast := models.Forecast{
		Provider: s.Name(),
		City:     city,
		Days:     make([]models.ForecastDay, 0, len(series)),
		Updated:  time.Now(),
	}

	for _, entry := range series {
		day, err := entry.toForecastDay()
		if err != nil {
			return models.Forecast{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		forecast.Days = append(forecast.Days, day)
	}

	l.DebugContext(ctx, "Decoded forecast", slog.Int("days", len(forecast.Days)))
	return forecast, nil
}

func (d SevenTimerDay) toForecastDay() (models.ForecastDay, error) {
	date, err := models.DecodeDate(d.Date)
	if err != nil {
		return models.ForecastDay{}, err
	}

	day := models.ForecastDay{
		Date:        date,
		WeatherCode: d.Weather,
	}
	if d.Temp2m != nil {
		day.HighC = models.Temperature(d.Temp2m.Max)
		day.LowC = models.Temperature(d.Temp2m.Min)
	}
	return day, nil
}
