package eventbus

import "time"

// Synthesis event topics.
const (
	EventSynthRequested = "synth:requested"
	EventSynthCompleted = "synth:completed"
	EventSynthError     = "synth:error"
)

// SynthEventData carries synthesis lifecycle information.
type SynthEventData struct {
	RequestID string        `json:"request_id"`
	Provider  string        `json:"provider"`
	TextLen   int           `json:"text_len"`
	Bytes     int           `json:"bytes,omitempty"`
	Elapsed   time.Duration `json:"elapsed,omitempty"`
	Error     string        `json:"error,omitempty"`
}
