// Package edge synthesizes speech with Microsoft Edge neural voices.
package edge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wujunwei928/edge-tts-go/edge_tts"

	"speech-relay-go/internal/core/providers/tts"
	"speech-relay-go/internal/platform/config"
	platformerrors "speech-relay-go/internal/platform/errors"
	"speech-relay-go/internal/platform/logging"
)

const defaultVoice = "en-US-AriaNeural"

func init() {
	tts.Register("edge", NewProvider)
}

// Provider wraps edge-tts-go behind the relay's Provider contract. A circuit
// breaker guards against hammering the Edge endpoint while it is failing.
type Provider struct {
	voice   string
	logger  *logging.Logger
	breaker *circuitBreaker

	mu            sync.RWMutex
	totalRequests int64
	errorCount    int64
}

// NewProvider builds an edge provider from its config entry.
func NewProvider(cfg config.TTSConfig, logger *logging.Logger) (tts.Provider, error) {
	voice := cfg.Voice
	if voice == "" {
		voice = defaultVoice
	}

	return &Provider{
		voice:  voice,
		logger: logger,
		breaker: &circuitBreaker{
			maxFailures: 5,
			retryAfter:  30 * time.Second,
		},
	}, nil
}

func (p *Provider) Synthesize(ctx context.Context, text string, options tts.SynthesisOptions) ([]byte, error) {
	if text == "" {
		return nil, platformerrors.New(platformerrors.KindProvider, "edge.synthesize", "text cannot be empty")
	}
	if p.breaker.isOpen() {
		return nil, platformerrors.New(platformerrors.KindProvider, "edge.synthesize", "circuit breaker is open")
	}

	voice := options.Voice
	if voice == "" {
		p.mu.RLock()
		voice = p.voice
		p.mu.RUnlock()
	}

	p.mu.Lock()
	p.totalRequests++
	p.mu.Unlock()

	communicate, err := edge_tts.NewCommunicate(text, edge_tts.SetVoice(voice))
	if err != nil {
		p.recordFailure(err)
		return nil, platformerrors.Wrap(platformerrors.KindProvider, "edge.synthesize", "create communicator", err)
	}

	start := time.Now()
	audio, err := communicate.Stream()
	if err != nil {
		p.recordFailure(err)
		return nil, platformerrors.Wrap(platformerrors.KindProvider, "edge.synthesize", "synthesis failed", err)
	}

	p.breaker.recordSuccess()
	p.logger.DebugTag("TTS", "edge synthesis: voice=%s %d chars -> %d bytes in %v",
		voice, len(text), len(audio), time.Since(start))

	return audio, nil
}

func (p *Provider) recordFailure(err error) {
	p.breaker.recordFailure()
	p.mu.Lock()
	p.errorCount++
	p.mu.Unlock()
	p.logger.ErrorTag("TTS", "edge synthesis failed: %v", err)
}

func (p *Provider) SetVoice(voice string) error {
	if voice == "" {
		return fmt.Errorf("voice cannot be empty")
	}
	p.mu.Lock()
	p.voice = voice
	p.mu.Unlock()
	return nil
}

func (p *Provider) GetConfig() tts.ProviderConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return tts.ProviderConfig{
		Provider: "edge",
		Voice:    p.voice,
		Format:   "mp3",
	}
}

func (p *Provider) Cleanup() error {
	return nil
}

// circuitBreaker trips open after consecutive failures and half-opens once the
// retry window elapses.
type circuitBreaker struct {
	maxFailures int
	retryAfter  time.Duration

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	state       int // 0=closed, 1=open, 2=half-open
}

func (cb *circuitBreaker) isOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == 1 {
		if time.Since(cb.lastFailure) > cb.retryAfter {
			cb.state = 2
			return false
		}
		return true
	}
	return false
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = 0
}

func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = time.Now()

	if cb.failures >= cb.maxFailures {
		cb.state = 1
	}
}
