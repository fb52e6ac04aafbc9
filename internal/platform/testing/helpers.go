package testing

import (
	"testing"

	"speech-relay-go/internal/platform/config"
	"speech-relay-go/internal/platform/logging"
)

func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			IP:   "127.0.0.1",
			Port: 8000,
		},
		Log: config.LogConfig{
			Level: "DEBUG",
			Dir:   t.TempDir(),
			File:  "test.log",
		},
		Web: config.WebConfig{
			Enabled:   true,
			StaticDir: "./web",
		},
		Selected: config.SelectedConfig{
			TTS: "WorkersTTS",
		},
		TTS: map[string]config.TTSConfig{
			"WorkersTTS": {
				Type:    "workers",
				URL:     "http://127.0.0.1:9000/",
				Model:   "test-model",
				Timeout: 5,
			},
		},
	}

	return cfg
}

func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	cfg := SetupTestConfig(t)
	logger, err := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: cfg.Log.File,
	})

	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}

	t.Cleanup(func() { logger.Close() })

	return logger
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}

func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}
