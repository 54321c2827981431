// Package app holds the application state and runs forecast fetch cycles in
// response to UI events.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"city-forecast/datasource"
	"city-forecast/metrics"
	"city-forecast/models"
	"city-forecast/render"
)

// App wires the catalog, the forecast source and the renderer together
type App struct {
	state    *State
	bus      *Bus
	source   datasource.ForecastSource
	renderer *render.Renderer
	logger   *slog.Logger
	pending  sync.WaitGroup
}

// New creates the application and registers its event handlers
func New(catalog []models.City, source datasource.ForecastSource, renderer *render.Renderer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		state:    NewState(catalog),
		bus:      NewBus(),
		source:   source,
		renderer: renderer,
		logger:   logger,
	}
	a.bus.On(EventSelectionChanged, a.onSelectionChanged)
	return a
}

// State returns the application state
func (a *App) State() *State {
	return a.state
}

// Bus returns the event bus, so callers can observe selection changes
func (a *App) Bus() *Bus {
	return a.bus
}

// Start selects the first city, which triggers the initial fetch.
// It blocks until that fetch completes and does nothing for an empty catalog.
func (a *App) Start(ctx context.Context) {
	if _, ok := a.state.City(0); !ok {
		a.logger.WarnContext(ctx, "City catalog is empty, nothing to fetch")
		return
	}
	a.Select(ctx, 0, SourceStartup)
}

// Select records index as the selection and emits EventSelectionChanged.
// It returns once the fetch cycle has finished. An index outside the catalog
// is ignored and false is returned.
func (a *App) Select(ctx context.Context, index int, source string) bool {
	return a.selectCity(ctx, index, source, false)
}

// SelectInBackground is Select without waiting for the fetch: when it returns
// the status already reads Loading and the cycle carries on in its own
// goroutine. Use Wait to block until background cycles are done.
func (a *App) SelectInBackground(ctx context.Context, index int, source string) bool {
	return a.selectCity(ctx, index, source, true)
}

// Wait blocks until every background fetch cycle has finished
func (a *App) Wait() {
	a.pending.Wait()
}

func (a *App) selectCity(ctx context.Context, index int, source string, background bool) bool {
	city, ok := a.state.City(index)
	if !ok {
		a.logger.DebugContext(ctx, "Ignoring selection outside the catalog",
			slog.Int("index", index), slog.String("source", source))
		return false
	}

	a.state.selectIndex(index)
	metrics.SelectionEventsTotal.WithLabelValues(source).Inc()

	a.bus.Emit(ctx, SelectionChanged{Index: index, City: city, Source: source, Background: background})
	return true
}

// ReportCatalogFailure shows the city list error in the status slot
func (a *App) ReportCatalogFailure(ctx context.Context, err error) {
	a.logger.ErrorContext(ctx, "Could not load city list", slog.Any("error", err))
	a.state.report(Status{Phase: PhaseFailed, Message: MessageCatalogFailed})
}

func (a *App) onSelectionChanged(ctx context.Context, event Event) {
	selection, ok := event.(SelectionChanged)
	if !ok {
		return
	}

	token := a.state.begin()
	if !selection.Background {
		a.refresh(ctx, token, selection.City)
		return
	}

	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		a.refresh(ctx, token, selection.City)
	}()
}

// refresh completes the fetch cycle started with token: Success or Failed.
// A cycle overtaken by a newer one leaves the state alone.
func (a *App) refresh(ctx context.Context, token uint64, city models.City) {
	l := a.logger.With(slog.String("city", city.Name), slog.String("source", a.source.Name()))

	l.InfoContext(ctx, "Fetching forecast",
		slog.Float64("latitude", city.Latitude),
		slog.Float64("longitude", city.Longitude))

	start := time.Now()
	forecast, err := a.source.FetchForecast(ctx, city)
	metrics.ForecastFetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch forecast", slog.Any("error", err))
		if !a.state.fail(token, MessageFetchFailed) {
			a.discard(ctx, l, token)
			return
		}
		metrics.ForecastFetchesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return
	}

	cards := a.renderer.Cards(city.Name, forecast.Days)
	if !a.state.succeed(token, city.Name, cards) {
		a.discard(ctx, l, token)
		return
	}
	metrics.ForecastFetchesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	l.InfoContext(ctx, "Rendered forecast", slog.Int("cards", len(cards)))
}

func (a *App) discard(ctx context.Context, l *slog.Logger, token uint64) {
	metrics.ForecastFetchesTotal.WithLabelValues(metrics.OutcomeStale).Inc()
	l.InfoContext(ctx, "Discarding stale forecast response", slog.Uint64("token", token))
}
