// Package openai synthesizes speech through the OpenAI audio/speech endpoint.
package openai

import (
	"context"
	"io"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"speech-relay-go/internal/core/providers/tts"
	"speech-relay-go/internal/platform/config"
	platformerrors "speech-relay-go/internal/platform/errors"
	"speech-relay-go/internal/platform/logging"
)

const (
	defaultModel = "tts-1"
	defaultVoice = "alloy"
)

func init() {
	tts.Register("openai", NewProvider)
}

// Provider wraps the go-openai speech client.
type Provider struct {
	client *goopenai.Client
	model  string
	voice  string
	speed  float64
	logger *logging.Logger
}

// NewProvider builds an OpenAI provider from its config entry.
func NewProvider(cfg config.TTSConfig, logger *logging.Logger) (tts.Provider, error) {
	if cfg.APIKey == "" {
		return nil, platformerrors.New(platformerrors.KindConfig, "openai.new", "api key is required")
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.URL != "" {
		clientCfg.BaseURL = cfg.URL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	voice := cfg.Voice
	if voice == "" {
		voice = defaultVoice
	}
	speed := cfg.Speed
	if speed <= 0 {
		speed = 1.0
	}

	return &Provider{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
		voice:  voice,
		speed:  speed,
		logger: logger,
	}, nil
}

func (p *Provider) Synthesize(ctx context.Context, text string, options tts.SynthesisOptions) ([]byte, error) {
	if text == "" {
		return nil, platformerrors.New(platformerrors.KindProvider, "openai.synthesize", "text cannot be empty")
	}

	voice := options.Voice
	if voice == "" {
		voice = p.voice
	}
	speed := options.Speed
	if speed <= 0 {
		speed = p.speed
	}

	start := time.Now()
	resp, err := p.client.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(p.model),
		Input:          text,
		Voice:          goopenai.SpeechVoice(voice),
		ResponseFormat: goopenai.SpeechResponseFormatMp3,
		Speed:          speed,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindProvider, "openai.synthesize", "speech request failed", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindProvider, "openai.synthesize", "read speech response", err)
	}

	p.logger.DebugTag("TTS", "openai synthesis: model=%s voice=%s %d chars -> %d bytes in %v",
		p.model, voice, len(text), len(audio), time.Since(start))

	return audio, nil
}

func (p *Provider) SetVoice(voice string) error {
	if voice == "" {
		return platformerrors.New(platformerrors.KindProvider, "openai.setvoice", "voice cannot be empty")
	}
	p.voice = voice
	return nil
}

func (p *Provider) GetConfig() tts.ProviderConfig {
	return tts.ProviderConfig{
		Provider: "openai",
		Model:    p.model,
		Voice:    p.voice,
		Speed:    p.speed,
		Format:   "mp3",
	}
}

func (p *Provider) Cleanup() error {
	return nil
}
