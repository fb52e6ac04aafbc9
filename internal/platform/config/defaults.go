package config

// DefaultConfig returns the built-in configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8000,
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:   true,
			StaticDir: "./web",
		},
		Selected: SelectedConfig{
			TTS: "WorkersTTS",
		},
		TTS: map[string]TTSConfig{
			"WorkersTTS": {
				Type:    "workers",
				URL:     "https://text-to-speech.example.workers.dev/",
				Model:   "@cf/myshell-ai/melotts",
				Timeout: 30,
			},
			"EdgeTTS": {
				Type:  "edge",
				Voice: "en-US-AriaNeural",
			},
			"OpenAITTS": {
				Type:   "openai",
				Model:  "tts-1",
				Voice:  "alloy",
				Speed:  1.0,
				Format: "mp3",
				APIKey: "your_api_key",
			},
		},
	}
}
