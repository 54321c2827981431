package app

import "fmt"

// Phase is the stage of the current fetch cycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailed
)

// Status line messages
const (
	MessageLoading       = "Loading forecast..."
	MessageFetchFailed   = "Failed to load forecast data."
	MessageCatalogFailed = "Could not load city list."
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// MarshalText lets the phase appear by name in JSON
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*p = PhaseIdle
	case "loading":
		*p = PhaseLoading
	case "success":
		*p = PhaseSuccess
	case "failed":
		*p = PhaseFailed
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

// Status is the single status slot shown above the forecast.
// An empty message means there is nothing to report.
type Status struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message"`
}
