// Package speech exposes the text-to-speech relay endpoint.
package speech

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"speech-relay-go/internal/core/audio"
	"speech-relay-go/internal/core/providers/tts"
	"speech-relay-go/internal/domain/eventbus"
	"speech-relay-go/internal/platform/errors"
	"speech-relay-go/internal/platform/logging"
	httptransport "speech-relay-go/internal/transport/http"
)

// UsageHint is returned for any request that is not a synthesis POST or a
// preflight.
const UsageHint = "Use POST with JSON { text }"

// SpeakRequest is the synthesis request body.
type SpeakRequest struct {
	Text string `json:"text"`
}

// Service relays text to the configured synthesis provider.
type Service struct {
	logger       *logging.Logger
	provider     tts.Provider
	providerName string
}

// NewService creates the relay service around an injected provider.
func NewService(provider tts.Provider, providerName string, logger *logging.Logger) (*Service, error) {
	if provider == nil {
		return nil, errors.New(errors.KindConfig, "speech.new", "provider is required")
	}

	return &Service{
		logger:       logger,
		provider:     provider,
		providerName: providerName,
	}, nil
}

// Register wires the relay routes. Anything other than a synthesis POST or a
// preflight answers with the usage hint.
func (s *Service) Register(router *httptransport.Router) {
	router.Engine.POST("/speak", s.handleSpeak)
	router.Engine.OPTIONS("/speak", s.handleOptions)
	router.Engine.GET("/speak", s.handleUsage)

	router.API.POST("/speak", s.handleSpeak)
	router.API.GET("/provider", s.handleProvider)

	router.Engine.NoRoute(s.handleUsage)
}

func (s *Service) handleSpeak(c *gin.Context) {
	requestID := httptransport.RequestID(c)

	var req SpeakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "body must be JSON with a text field", nil)
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		httptransport.RespondError(c, http.StatusBadRequest, "text must not be empty", nil)
		return
	}

	eventbus.Publish(eventbus.EventSynthRequested, eventbus.SynthEventData{
		RequestID: requestID,
		Provider:  s.providerName,
		TextLen:   len(text),
	})

	start := time.Now()
	audioData, err := s.provider.Synthesize(c.Request.Context(), text, tts.SynthesisOptions{})
	if err != nil {
		eventbus.Publish(eventbus.EventSynthError, eventbus.SynthEventData{
			RequestID: requestID,
			Provider:  s.providerName,
			TextLen:   len(text),
			Error:     err.Error(),
		})
		s.logger.ErrorTag("TTS", "synthesis failed: %v", err)
		httptransport.RespondError(c, http.StatusBadGateway, "speech synthesis failed", nil)
		return
	}

	elapsed := time.Since(start)
	eventbus.Publish(eventbus.EventSynthCompleted, eventbus.SynthEventData{
		RequestID: requestID,
		Provider:  s.providerName,
		TextLen:   len(text),
		Bytes:     len(audioData),
		Elapsed:   elapsed,
	})
	s.logger.InfoTag("TTS", "synthesized %d chars -> %d bytes in %v", len(text), len(audioData), elapsed)

	// The payload is served verbatim; the decode is metadata only.
	if info, err := audio.Inspect(audioData); err == nil {
		c.Header("X-Audio-Duration", fmt.Sprintf("%.3f", info.Duration.Seconds()))
	}

	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(http.StatusOK, tts.MediaType, audioData)
}

func (s *Service) handleOptions(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	c.Status(http.StatusOK)
}

func (s *Service) handleUsage(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.String(http.StatusOK, UsageHint)
}

func (s *Service) handleProvider(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, s.provider.GetConfig(), "")
}
