package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"speech-relay-go/internal/core/providers/tts"
	"speech-relay-go/internal/core/providers/tts/workers"
	"speech-relay-go/internal/platform/config"
	platformtesting "speech-relay-go/internal/platform/testing"
	httptransport "speech-relay-go/internal/transport/http"
)

// mockProvider is a function-field test double for the synthesis capability.
type mockProvider struct {
	SynthesizeFn func(ctx context.Context, text string, options tts.SynthesisOptions) ([]byte, error)
}

func (m *mockProvider) Synthesize(ctx context.Context, text string, options tts.SynthesisOptions) ([]byte, error) {
	return m.SynthesizeFn(ctx, text, options)
}

func (m *mockProvider) SetVoice(voice string) error { return nil }

func (m *mockProvider) GetConfig() tts.ProviderConfig {
	return tts.ProviderConfig{Provider: "mock", Format: "mp3"}
}

func (m *mockProvider) Cleanup() error { return nil }

func setupRouter(t *testing.T, provider tts.Provider) *httptransport.Router {
	t.Helper()

	cfg := platformtesting.SetupTestConfig(t)
	logger := platformtesting.SetupTestLogger(t)

	router, err := httptransport.Build(httptransport.Options{Config: cfg, Logger: logger})
	if err != nil {
		t.Fatalf("failed to build router: %v", err)
	}

	service, err := NewService(provider, "mock", logger)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	service.Register(router)

	return router
}

func postSpeak(router *httptransport.Router, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/speak", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.Engine.ServeHTTP(w, req)
	return w
}

func TestSpeak(t *testing.T) {
	wantAudio := []byte{0xFF, 0xFB, 0x01, 0x02}
	var gotText string

	provider := &mockProvider{
		SynthesizeFn: func(ctx context.Context, text string, options tts.SynthesisOptions) ([]byte, error) {
			gotText = text
			return wantAudio, nil
		},
	}
	router := setupRouter(t, provider)

	w := postSpeak(router, `{"text": "Hello"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotText != "Hello" {
		t.Errorf("provider received %q, want %q", gotText, "Hello")
	}
	if got := w.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("expected Content-Type audio/mpeg, got %s", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard CORS origin, got %q", got)
	}
	if !bytes.Equal(w.Body.Bytes(), wantAudio) {
		t.Errorf("response body is not the provider audio: got %v", w.Body.Bytes())
	}
}

func TestSpeak_TrimsWhitespace(t *testing.T) {
	var gotText string
	provider := &mockProvider{
		SynthesizeFn: func(ctx context.Context, text string, options tts.SynthesisOptions) ([]byte, error) {
			gotText = text
			return []byte{0x01}, nil
		},
	}
	router := setupRouter(t, provider)

	if w := postSpeak(router, `{"text": "  Hello  "}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotText != "Hello" {
		t.Errorf("expected trimmed text, got %q", gotText)
	}
}

func TestSpeak_BadRequests(t *testing.T) {
	provider := &mockProvider{
		SynthesizeFn: func(ctx context.Context, text string, options tts.SynthesisOptions) ([]byte, error) {
			t.Fatal("provider must not be called for invalid input")
			return nil, nil
		},
	}
	router := setupRouter(t, provider)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{not json`},
		{"missing text", `{}`},
		{"empty text", `{"text": ""}`},
		{"whitespace text", `{"text": "   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postSpeak(router, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}

			var resp httptransport.APIResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error responses must be JSON envelopes: %v", err)
			}
			if resp.Success {
				t.Error("expected success=false")
			}
		})
	}
}

func TestSpeak_ProviderFailure(t *testing.T) {
	provider := &mockProvider{
		SynthesizeFn: func(ctx context.Context, text string, options tts.SynthesisOptions) ([]byte, error) {
			return nil, context.DeadlineExceeded
		},
	}
	router := setupRouter(t, provider)

	w := postSpeak(router, `{"text": "Hello"}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestPreflight(t *testing.T) {
	provider := &mockProvider{}
	router := setupRouter(t, provider)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/speak", nil)
	router.Engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin header, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("expected POST in allowed methods, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Content-Type") {
		t.Errorf("expected Content-Type in allowed headers, got %q", got)
	}
}

func TestUsageHint(t *testing.T) {
	provider := &mockProvider{}
	router := setupRouter(t, provider)

	paths := []string{"/speak", "/nonexistent", "/some/other/path"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, path, nil)
			router.Engine.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if w.Body.String() != UsageHint {
				t.Errorf("expected usage hint %q, got %q", UsageHint, w.Body.String())
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("expected wildcard origin header, got %q", got)
			}
		})
	}
}

func TestProviderInfo(t *testing.T) {
	provider := &mockProvider{}
	router := setupRouter(t, provider)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/provider", nil)
	router.Engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp httptransport.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
}

// Full path: POST {text} -> workers provider -> upstream base64 -> decoded
// bytes back to the caller.
func TestEndToEnd_WorkersProvider(t *testing.T) {
	wantAudio := []byte{0xFF, 0xFB, 0x90, 0x64, 0x00, 0x11, 0x22}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode upstream request: %v", err)
		}
		if req.Prompt != "Hello" {
			t.Errorf("upstream received prompt %q, want %q", req.Prompt, "Hello")
		}
		json.NewEncoder(w).Encode(map[string]string{
			"audio": base64.StdEncoding.EncodeToString(wantAudio),
		})
	}))
	defer upstream.Close()

	provider, err := workers.NewProvider(config.TTSConfig{
		Type:    "workers",
		URL:     upstream.URL,
		Model:   "test-model",
		Timeout: 2,
	}, nil)
	if err != nil {
		t.Fatalf("failed to create workers provider: %v", err)
	}

	router := setupRouter(t, provider)

	w := postSpeak(router, `{"text": "Hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("expected Content-Type audio/mpeg, got %s", got)
	}
	if !bytes.Equal(w.Body.Bytes(), wantAudio) {
		t.Errorf("expected decoded upstream bytes, got %v", w.Body.Bytes())
	}
}
