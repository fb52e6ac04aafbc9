package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoader_Load(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")

	configContent := `
server:
  ip: "127.0.0.1"
  port: 8080
log:
  log_level: "DEBUG"
  log_dir: "/tmp/logs"
  log_file: "test.log"
selected_module:
  TTS: "WorkersTTS"
TTS:
  WorkersTTS:
    type: "workers"
    url: "http://127.0.0.1:9000/"
    model: "test-model"
    timeout: 5
`

	if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader().WithDotEnv(false).WithPath(configFile)
	res, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg := res.Config

	if cfg.Server.IP != "127.0.0.1" {
		t.Errorf("expected server IP 127.0.0.1, got %s", cfg.Server.IP)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "DEBUG" {
		t.Errorf("expected log level DEBUG, got %s", cfg.Log.Level)
	}
	if got := cfg.TTS["WorkersTTS"].URL; got != "http://127.0.0.1:9000/" {
		t.Errorf("expected workers URL to survive load, got %s", got)
	}
	if res.Path != configFile {
		t.Errorf("expected result path %s, got %s", configFile, res.Path)
	}
}

func TestLoader_LoadMissingFileUsesDefaults(t *testing.T) {
	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "absent.yaml"))

	res, err := loader.Load()
	if err != nil {
		t.Fatalf("missing config file should fall back to defaults: %v", err)
	}
	if res.Path != "" {
		t.Errorf("expected empty path for defaults, got %s", res.Path)
	}
	if res.Config.Selected.TTS != "WorkersTTS" {
		t.Errorf("expected default TTS selection, got %s", res.Config.Selected.TTS)
	}
}

func TestLoader_Validate(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Server:   ServerConfig{Port: 8080},
				Selected: SelectedConfig{TTS: "WorkersTTS"},
				TTS:      map[string]TTSConfig{"WorkersTTS": {Type: "workers"}},
			},
			wantErr: false,
		},
		{
			name: "invalid server port",
			config: &Config{
				Server:   ServerConfig{Port: 70000},
				Selected: SelectedConfig{TTS: "WorkersTTS"},
				TTS:      map[string]TTSConfig{"WorkersTTS": {Type: "workers"}},
			},
			wantErr: true,
		},
		{
			name: "no selection",
			config: &Config{
				Server: ServerConfig{Port: 8080},
				TTS:    map[string]TTSConfig{"WorkersTTS": {Type: "workers"}},
			},
			wantErr: true,
		},
		{
			name: "selection not configured",
			config: &Config{
				Server:   ServerConfig{Port: 8080},
				Selected: SelectedConfig{TTS: "MissingTTS"},
				TTS:      map[string]TTSConfig{"WorkersTTS": {Type: "workers"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := loader.validate(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
