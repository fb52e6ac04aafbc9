package config

type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Log      LogConfig            `yaml:"log"`
	Web      WebConfig            `yaml:"web"`
	TTS      map[string]TTSConfig `yaml:"TTS"`
	Selected SelectedConfig       `yaml:"selected_module"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// WebConfig controls the bundled single-page client.
type WebConfig struct {
	Enabled   bool   `yaml:"enabled"`
	StaticDir string `yaml:"static_dir"`
	// Endpoint is the synthesis URL advertised to the page. Empty means
	// same-origin "/speak".
	Endpoint string `yaml:"endpoint"`
}

// TTSConfig describes one synthesis provider entry.
type TTSConfig struct {
	Type    string  `yaml:"type"`
	URL     string  `yaml:"url"`
	Model   string  `yaml:"model"`
	Voice   string  `yaml:"voice"`
	Speed   float64 `yaml:"speed"`
	Format  string  `yaml:"format"`
	APIKey  string  `yaml:"api_key"`
	Timeout int     `yaml:"timeout"` // seconds, per synthesis request
}

type SelectedConfig struct {
	TTS string `yaml:"TTS"`
}
