package eventbus

import (
	"sync"

	"speech-relay-go/internal/platform/logging"
)

// Stats aggregates synthesis outcomes published on the bus.
type Stats struct {
	mu        sync.Mutex
	requested int64
	completed int64
	failed    int64
	bytes     int64
}

// NewStats subscribes a stats collector to the synthesis topics.
func NewStats() (*Stats, error) {
	s := &Stats{}
	if err := Subscribe(EventSynthRequested, s.onRequested); err != nil {
		return nil, err
	}
	if err := Subscribe(EventSynthCompleted, s.onCompleted); err != nil {
		return nil, err
	}
	if err := Subscribe(EventSynthError, s.onError); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stats) onRequested(data SynthEventData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requested++
}

func (s *Stats) onCompleted(data SynthEventData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed++
	s.bytes += int64(data.Bytes)
}

func (s *Stats) onError(data SynthEventData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() (requested, completed, failed, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested, s.completed, s.failed, s.bytes
}

// Report logs the aggregate counters, typically on shutdown.
func (s *Stats) Report(logger *logging.Logger) {
	requested, completed, failed, bytes := s.Snapshot()
	logger.InfoTag("TTS", "synthesis totals: requested=%d completed=%d failed=%d bytes=%d",
		requested, completed, failed, bytes)
}

// Close removes the bus subscriptions.
func (s *Stats) Close() {
	_ = Unsubscribe(EventSynthRequested, s.onRequested)
	_ = Unsubscribe(EventSynthCompleted, s.onCompleted)
	_ = Unsubscribe(EventSynthError, s.onError)
}
