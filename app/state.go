package app

import (
	"sync"

	"city-forecast/models"
	"city-forecast/render"
)

// NoSelection is the selected index before any city was chosen
const NoSelection = -1

// View is a snapshot of everything the page shows
type View struct {
	Cities   []models.City `json:"cities"`
	Selected int           `json:"selected"`
	Status   Status        `json:"status"`
	City     string        `json:"city,omitempty"`
	Cards    []render.Card `json:"cards"`
}

// State holds the catalog, the selection, the status slot and the rendered
// cards. The catalog never changes after construction.
type State struct {
	catalog []models.City

	mutex    sync.RWMutex
	selected int
	status   Status
	cityName string
	cards    []render.Card
	token    uint64 // id of the latest fetch cycle
}

// NewState creates the state for a loaded catalog
func NewState(catalog []models.City) *State {
	return &State{
		catalog:  append([]models.City(nil), catalog...),
		selected: NoSelection,
	}
}

// Catalog returns a copy of the cities in catalog order
func (s *State) Catalog() []models.City {
	return append([]models.City(nil), s.catalog...)
}

// City resolves a catalog index
func (s *State) City(index int) (models.City, bool) {
	if index < 0 || index >= len(s.catalog) {
		return models.City{}, false
	}
	return s.catalog[index], true
}

// Selected returns the selected catalog index, or NoSelection
func (s *State) Selected() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.selected
}

// Status returns the current status slot
func (s *State) Status() Status {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.status
}

// Snapshot copies the state for rendering
func (s *State) Snapshot() View {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	cards := make([]render.Card, len(s.cards))
	copy(cards, s.cards)

	return View{
		Cities:   s.Catalog(),
		Selected: s.selected,
		Status:   s.status,
		City:     s.cityName,
		Cards:    cards,
	}
}

func (s *State) selectIndex(index int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.selected = index
}

// begin starts a fetch cycle: status Loading, cards cleared. The returned
// token must be passed to succeed or fail.
func (s *State) begin() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token++
	s.status = Status{Phase: PhaseLoading, Message: MessageLoading}
	s.cityName = ""
	s.cards = nil
	return s.token
}

// succeed replaces the cards and clears the status. It returns false and
// changes nothing when a newer cycle has started since token was issued.
func (s *State) succeed(token uint64, cityName string, cards []render.Card) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if token != s.token {
		return false
	}
	s.status = Status{Phase: PhaseSuccess}
	s.cityName = cityName
	s.cards = cards
	return true
}

// fail reports a failed cycle, with the same staleness rule as succeed
func (s *State) fail(token uint64, message string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if token != s.token {
		return false
	}
	s.status = Status{Phase: PhaseFailed, Message: message}
	s.cityName = ""
	s.cards = nil
	return true
}

// report overwrites the status slot outside of a fetch cycle
func (s *State) report(status Status) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.status = status
}
