package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"city-forecast/app"
	"city-forecast/catalog"
	"city-forecast/datasource"
	"city-forecast/models"
	"city-forecast/render"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstream is a stand-in for the 7Timer API that records every query
type upstream struct {
	mutex   sync.Mutex
	queries []url.Values
	body    string
	status  int

	arrived chan struct{} // signalled when a request comes in, if set
	hold    chan struct{} // responses wait for it to close, if set
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mutex.Lock()
	u.queries = append(u.queries, r.URL.Query())
	body, status := u.body, u.status
	u.mutex.Unlock()

	if u.arrived != nil {
		u.arrived <- struct{}{}
	}
	if u.hold != nil {
		<-u.hold
	}

	if status != 0 {
		w.WriteHeader(status)
	}
	io.WriteString(w, body)
}

func (u *upstream) Queries() []url.Values {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return append([]url.Values(nil), u.queries...)
}

const oneDayBody = `{"dataseries":[{"date":20240101,"weather":"clear","temp2m":{"max":5,"min":-2}}]}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, csv string, up *upstream) (*Server, *app.App) {
	t.Helper()
	logger := quietLogger()

	forecastAPI := httptest.NewServer(up)
	t.Cleanup(forecastAPI.Close)

	cities := catalog.NewLoader(nil, logger).Parse(csv)
	source := datasource.NewSevenTimerSource(forecastAPI.URL, 0, logger)
	application := app.New(cities, source, render.NewRenderer(render.Options{}), logger)

	return NewServer(application, Options{}, logger), application
}

func getPage(t *testing.T, server *Server) *goquery.Document {
	t.Helper()
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func postForm(server *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestEndToEndMontreal(t *testing.T) {
	up := &upstream{body: oneDayBody}
	server, application := newTestServer(t, "lat,lon,name\n45.5,-73.6,Montreal", up)

	doc := getPage(t, server)
	options := doc.Find("#citySelect option")
	require.Equal(t, 1, options.Length())
	assert.Equal(t, "Montreal", options.Text())
	assert.Empty(t, up.Queries(), "nothing is fetched before a selection")

	rec := postForm(server, "/select", url.Values{"city": {"0"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	application.Wait()

	queries := up.Queries()
	require.Len(t, queries, 1)
	assert.Equal(t, "45.5", queries[0].Get("lat"))
	assert.Equal(t, "-73.6", queries[0].Get("lon"))
	assert.Equal(t, "civillight", queries[0].Get("product"))
	assert.Equal(t, "json", queries[0].Get("output"))

	doc = getPage(t, server)
	cards := doc.Find("article.forecast-card")
	require.Equal(t, 1, cards.Length())
	assert.Equal(t, "Mon, Jan 1", cards.Find("h3").Text())
	assert.Equal(t, "Montreal", cards.Find("p.city").Text())
	assert.Equal(t, "Clear", cards.Find("p.weather-text").Text())
	spans := cards.Find(".temps span")
	assert.Equal(t, "High: 5°C", strings.TrimSpace(spans.Eq(0).Text()))
	assert.Equal(t, "Low: -2°C", strings.TrimSpace(spans.Eq(1).Text()))
	assert.Empty(t, strings.TrimSpace(doc.Find("#status").Text()))

	_, selected := doc.Find("#citySelect option").Attr("selected")
	assert.True(t, selected)
}

func TestSelectButtonRefetches(t *testing.T) {
	up := &upstream{body: oneDayBody}
	server, application := newTestServer(t, "lat,lon,name\n45.5,-73.6,Montreal\n59.913,10.752,Oslo", up)

	postForm(server, "/select", url.Values{"city": {"1"}})
	postForm(server, "/select", url.Values{"city": {"1"}, "action": {"click"}})
	application.Wait()

	queries := up.Queries()
	require.Len(t, queries, 2)
	assert.Equal(t, "59.913", queries[1].Get("lat"))
}

func TestSelectShowsLoadingBeforeForecastArrives(t *testing.T) {
	up := &upstream{body: oneDayBody, hold: make(chan struct{})}
	server, application := newTestServer(t, "lat,lon,name\n45.5,-73.6,Montreal", up)

	rec := postForm(server, "/select", url.Values{"city": {"0"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	doc := getPage(t, server)
	assert.Equal(t, app.MessageLoading, doc.Find("#status").Text())
	assert.Equal(t, 1, doc.Find(`meta[http-equiv="refresh"]`).Length())
	assert.Equal(t, 0, doc.Find("article.forecast-card").Length())

	close(up.hold)
	application.Wait()

	doc = getPage(t, server)
	assert.Equal(t, 0, doc.Find(`meta[http-equiv="refresh"]`).Length())
	assert.Equal(t, 1, doc.Find("article.forecast-card").Length())
}

func TestSelectionSurvivesClientDisconnect(t *testing.T) {
	up := &upstream{body: oneDayBody, arrived: make(chan struct{}, 1), hold: make(chan struct{})}
	server, application := newTestServer(t, "lat,lon,name\n45.5,-73.6,Montreal", up)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/selection?city=0", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		server.Handler().ServeHTTP(rec, req)
	}()

	<-up.arrived
	cancel()
	close(up.hold)
	<-done

	assert.Equal(t, http.StatusOK, rec.Code)
	status := application.State().Status()
	assert.Equal(t, app.PhaseSuccess, status.Phase)
	assert.Len(t, application.State().Snapshot().Cards, 1)
}

func TestFormSelectionSurvivesClientDisconnect(t *testing.T) {
	up := &upstream{body: oneDayBody, arrived: make(chan struct{}, 1), hold: make(chan struct{})}
	server, application := newTestServer(t, "lat,lon,name\n45.5,-73.6,Montreal", up)

	ctx, cancel := context.WithCancel(context.Background())
	form := url.Values{"city": {"0"}}
	req := httptest.NewRequest(http.MethodPost, "/select", strings.NewReader(form.Encode())).WithContext(ctx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	server.Handler().ServeHTTP(httptest.NewRecorder(), req)

	<-up.arrived
	cancel()
	close(up.hold)
	application.Wait()

	assert.Equal(t, app.PhaseSuccess, application.State().Status().Phase)
}

func TestSelectIgnoresInvalidIndex(t *testing.T) {
	up := &upstream{body: oneDayBody}
	server, application := newTestServer(t, "lat,lon,name\n45.5,-73.6,Montreal", up)

	for _, city := range []string{"1", "-1", "abc", ""} {
		rec := postForm(server, "/select", url.Values{"city": {city}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	}

	assert.Empty(t, up.Queries())
	assert.Equal(t, app.NoSelection, application.State().Selected())
}

func TestFailedFetchShowsStatus(t *testing.T) {
	up := &upstream{body: "upstream exploded", status: http.StatusBadGateway}
	server, application := newTestServer(t, "lat,lon,name\n45.5,-73.6,Montreal", up)

	postForm(server, "/select", url.Values{"city": {"0"}})
	application.Wait()

	doc := getPage(t, server)
	assert.Equal(t, app.MessageFetchFailed, doc.Find("#status").Text())
	assert.Equal(t, 0, doc.Find("article.forecast-card").Length())
}

func TestAPICitiesAndSelection(t *testing.T) {
	up := &upstream{body: oneDayBody}
	server, _ := newTestServer(t, "lat,lon,name\n45.5,-73.6,Montreal\n59.913,10.752,Oslo", up)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cities", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var cities struct {
		Cities []struct {
			Index int    `json:"index"`
			Name  string `json:"name"`
		} `json:"cities"`
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cities))
	assert.Equal(t, 2, cities.Count)
	assert.Equal(t, "Oslo", cities.Cities[1].Name)
	assert.Equal(t, 1, cities.Cities[1].Index)

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/selection?city=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var view app.View
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, 1, view.Selected)
	assert.Equal(t, "Oslo", view.City)
	require.Len(t, view.Cards, 1)
	assert.Equal(t, "5°C", view.Cards[0].High)

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/view", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phase":"success"`)
}

func TestAPISelectionErrors(t *testing.T) {
	up := &upstream{body: oneDayBody}
	server, _ := newTestServer(t, "lat,lon,name\n45.5,-73.6,Montreal", up)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/selection?city=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/selection?city=3", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No city at index 3")

	assert.Empty(t, up.Queries())
}

func TestEmptyCatalogPage(t *testing.T) {
	up := &upstream{body: oneDayBody}
	server, application := newTestServer(t, "lat,lon,name\n", up)
	application.ReportCatalogFailure(context.Background(), catalog.ErrResourceUnavailable)

	doc := getPage(t, server)
	assert.Equal(t, 0, doc.Find("#citySelect option").Length())
	assert.Equal(t, app.MessageCatalogFailed, doc.Find("#status").Text())
}

func TestHealthAndMetrics(t *testing.T) {
	server, _ := newTestServer(t, "lat,lon,name\n45.5,-73.6,Montreal", &upstream{body: oneDayBody})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "forecast_http_requests_total")
}

func TestServesIcons(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clear.png"), []byte("png"), 0o644))

	application := app.New([]models.City{}, datasource.NewSevenTimerSource("", 0, quietLogger()), render.NewRenderer(render.Options{}), quietLogger())
	server := NewServer(application, Options{ImageDir: dir}, quietLogger())

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/clear.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())
}
