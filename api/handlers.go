package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"city-forecast/app"
	"city-forecast/render"
)

// handlePage renders the forecast page from the current state
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	view := s.app.State().Snapshot()

	options := make([]render.CityOption, 0, len(view.Cities))
	for i, city := range view.Cities {
		options = append(options, render.CityOption{
			Index:    i,
			Name:     city.Name,
			Selected: i == view.Selected,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.Page(w, render.PageData{
		Cities:  options,
		Status:  view.Status.Message,
		Loading: view.Status.Phase == app.PhaseLoading,
		Cards:   view.Cards,
	})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render page", slog.Any("error", err))
	}
}

// handleSelect turns a form submission into a selection event and redirects
// back to the page while the forecast loads. Invalid or out-of-range indexes
// are ignored.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	source := app.SourceChange
	if r.PostForm.Get("action") == app.SourceClick {
		source = app.SourceClick
	}

	if index, err := strconv.Atoi(r.PostForm.Get("city")); err == nil {
		// The fetch outlives this request and must finish even if the browser goes away
		s.app.SelectInBackground(context.WithoutCancel(r.Context()), index, source)
	} else {
		s.logger.DebugContext(r.Context(), "Ignoring selection without a city index", slog.String("city", r.PostForm.Get("city")))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleGetCities returns the catalog with each city's index
func (s *Server) handleGetCities(w http.ResponseWriter, r *http.Request) {
	catalog := s.app.State().Catalog()

	cities := make([]map[string]interface{}, 0, len(catalog))
	for i, city := range catalog {
		cities = append(cities, map[string]interface{}{
			"index":     i,
			"name":      city.Name,
			"latitude":  city.Latitude,
			"longitude": city.Longitude,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cities": cities,
		"count":  len(cities),
	})
}

// handleGetView returns the current selection, status and cards
func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.State().Snapshot())
}

// handleSelection selects ?city=N, waits for the fetch and returns the view
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	raw := r.FormValue("city")
	index, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid city index: %q", raw))
		return
	}

	source := app.SourceChange
	if r.FormValue("action") == app.SourceClick {
		source = app.SourceClick
	}

	if !s.app.Select(context.WithoutCancel(r.Context()), index, source) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No city at index %d", index))
		return
	}

	writeJSON(w, http.StatusOK, s.app.State().Snapshot())
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
