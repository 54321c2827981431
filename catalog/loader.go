// Package catalog loads the list of selectable cities from a delimited text resource.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"city-forecast/models"

	"golang.org/x/time/rate"
)

//go:embed city_coordinates.csv
var defaultCatalog []byte

var (
	// ErrResourceUnavailable is returned when the catalog cannot be fetched or read
	ErrResourceUnavailable = errors.New("catalog resource unavailable")
	// ErrMalformedRow marks a row that is skipped while parsing
	ErrMalformedRow = errors.New("malformed catalog row")
)

// Loader reads the city catalog from a file, an http(s) URL or the embedded default
type Loader struct {
	client *http.Client
	logger *slog.Logger
}

// NewLoader creates a catalog loader. A nil client falls back to http.DefaultClient.
func NewLoader(client *http.Client, logger *slog.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{client: client, logger: logger}
}

// Load fetches the resource named by source and parses it into cities.
// An empty source selects the catalog embedded in the binary.
func (l *Loader) Load(ctx context.Context, source string) ([]models.City, error) {
	text, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}

	cities := l.Parse(text)
	l.logger.Info("Loaded city catalog",
		slog.String("source", sourceName(source)),
		slog.Int("cities", len(cities)))
	return cities, nil
}

// Parse turns catalog text into cities in file order. The first line is a
// header; rows that do not hold a latitude, a longitude and a name are skipped.
func (l *Loader) Parse(text string) []models.City {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	// Only the first few skipped rows are logged
	var sometimes = rate.Sometimes{First: 5}
	skipped := 0

	cities := make([]models.City, 0, len(lines))
	for i := 1; i < len(lines); i++ {
		city, err := ParseRow(lines[i])
		if err != nil {
			skipped++
			line := i + 1
			sometimes.Do(func() {
				l.logger.Debug("Skipping catalog row", slog.Int("line", line), slog.Any("error", err))
			})
			continue
		}
		cities = append(cities, city)
	}

	if skipped > 0 {
		l.logger.Info("Skipped malformed catalog rows", slog.Int("count", skipped))
	}
	return cities
}

// ParseRow parses one "latitude,longitude,name" row. Extra columns are ignored.
func ParseRow(line string) (models.City, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 3 {
		return models.City{}, fmt.Errorf("%w: expected at least 3 fields, got %d", ErrMalformedRow, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return models.City{}, fmt.Errorf("%w: latitude %q", ErrMalformedRow, fields[0])
	}
	lon, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return models.City{}, fmt.Errorf("%w: longitude %q", ErrMalformedRow, fields[1])
	}
	if !models.ValidCoordinates(lat, lon) {
		return models.City{}, fmt.Errorf("%w: coordinates %v,%v out of range", ErrMalformedRow, lat, lon)
	}

	name := fields[2]
	if name == "" {
		return models.City{}, fmt.Errorf("%w: empty name", ErrMalformedRow)
	}

	return models.City{Name: name, Latitude: lat, Longitude: lon}, nil
}

func (l *Loader) read(ctx context.Context, source string) (string, error) {
	if source == "" {
		return string(defaultCatalog), nil
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetch(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	return string(data), nil
}

func (l *Loader) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", ErrResourceUnavailable, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send request: %w", ErrResourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: could not load CSV: status %d", ErrResourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %w", ErrResourceUnavailable, err)
	}
	return string(body), nil
}

func sourceName(source string) string {
	if source == "" {
		return "embedded"
	}
	return source
}
