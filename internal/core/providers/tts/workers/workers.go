// Package workers implements the hosted-model relay provider: text is posted
// as a prompt to an upstream speech worker, which answers with base64-encoded
// MPEG audio.
package workers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"speech-relay-go/internal/core/providers/tts"
	"speech-relay-go/internal/platform/config"
	platformerrors "speech-relay-go/internal/platform/errors"
	"speech-relay-go/internal/platform/logging"
)

const defaultTimeout = 30 * time.Second

func init() {
	tts.Register("workers", NewProvider)
}

// Provider relays prompts to an upstream speech-synthesis worker.
type Provider struct {
	url     string
	model   string
	timeout time.Duration
	client  *http.Client
	logger  *logging.Logger
}

type synthesisRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type synthesisResponse struct {
	Audio string `json:"audio"`
}

// NewProvider builds a workers provider from its config entry.
func NewProvider(cfg config.TTSConfig, logger *logging.Logger) (tts.Provider, error) {
	if cfg.URL == "" {
		return nil, platformerrors.New(platformerrors.KindConfig, "workers.new", "upstream url is required")
	}

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &Provider{
		url:     cfg.URL,
		model:   cfg.Model,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Synthesize posts the text as a prompt and decodes the base64 audio answer.
// The decoded bytes are exactly what the upstream encoded; no transformation
// is applied.
func (p *Provider) Synthesize(ctx context.Context, text string, options tts.SynthesisOptions) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, platformerrors.New(platformerrors.KindProvider, "workers.synthesize", "text cannot be empty")
	}

	payload, err := json.Marshal(synthesisRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindProvider, "workers.synthesize", "encode request", err)
	}

	reqCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindProvider, "workers.synthesize", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindProvider, "workers.synthesize", "call upstream", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, platformerrors.New(platformerrors.KindProvider, "workers.synthesize",
			fmt.Sprintf("upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var result synthesisResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindProvider, "workers.synthesize", "decode response", err)
	}
	if result.Audio == "" {
		return nil, platformerrors.New(platformerrors.KindProvider, "workers.synthesize", "upstream returned no audio")
	}

	audio, err := base64.StdEncoding.DecodeString(result.Audio)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindProvider, "workers.synthesize", "decode audio", err)
	}

	p.logger.DebugTag("TTS", "workers synthesis: %d chars -> %d bytes in %v",
		len(text), len(audio), time.Since(start))

	return audio, nil
}

// SetVoice is accepted for interface compatibility; the upstream worker owns
// voice selection.
func (p *Provider) SetVoice(voice string) error {
	return nil
}

func (p *Provider) GetConfig() tts.ProviderConfig {
	return tts.ProviderConfig{
		Provider: "workers",
		Model:    p.model,
		Format:   "mp3",
	}
}

func (p *Provider) Cleanup() error {
	p.client.CloseIdleConnections()
	return nil
}
