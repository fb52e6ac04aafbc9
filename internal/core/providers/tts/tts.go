package tts

import (
	"context"
	"fmt"

	"speech-relay-go/internal/platform/config"
	"speech-relay-go/internal/platform/logging"
)

// Provider is the synthesis capability consumed by the relay. Implementations
// return the raw audio bytes for the prompt text, already decoded from any wire
// encoding the upstream uses.
type Provider interface {
	// Synthesize converts text to audio. The returned bytes are served to the
	// client verbatim.
	Synthesize(ctx context.Context, text string, options SynthesisOptions) ([]byte, error)

	// SetVoice changes the default voice.
	SetVoice(voice string) error

	// GetConfig reports the provider's effective configuration.
	GetConfig() ProviderConfig

	// Cleanup releases provider resources.
	Cleanup() error
}

// SynthesisOptions are per-request overrides of the provider defaults.
type SynthesisOptions struct {
	Voice  string  `json:"voice,omitempty"`
	Speed  float64 `json:"speed,omitempty"`
	Format string  `json:"format,omitempty"`
}

// ProviderConfig reports a provider's effective settings.
type ProviderConfig struct {
	Provider string  `json:"provider"`
	Model    string  `json:"model,omitempty"`
	Voice    string  `json:"voice,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
	Format   string  `json:"format"`
}

// MediaType is the content type of all synthesized payloads.
const MediaType = "audio/mpeg"

// Factory builds a provider from its config entry.
type Factory func(cfg config.TTSConfig, logger *logging.Logger) (Provider, error)

var factories = make(map[string]Factory)

// Register adds a provider factory under a type name. Called from provider
// package init functions.
func Register(name string, factory Factory) {
	factories[name] = factory
}

// Create builds the provider for a config entry by its type.
func Create(cfg config.TTSConfig, logger *logging.Logger) (Provider, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown TTS provider type: %s", cfg.Type)
	}

	provider, err := factory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create TTS provider %s: %w", cfg.Type, err)
	}

	return provider, nil
}
