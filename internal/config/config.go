package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DataGovConfig points at the open-data catalog resource holding crop records.
type DataGovConfig struct {
	BaseURL     string `yaml:"base_url"`
	ResourceID  string `yaml:"resource_id"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	Limit       int    `yaml:"limit"`
}

// WeatherConfig configures the daily precipitation endpoint.
type WeatherConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LLMConfig holds configuration for the OpenAI-compatible chat completion API.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// RetrievalConfig controls the document store and context size.
type RetrievalConfig struct {
	CorpusSize int `yaml:"corpus_size"`
	TopK       int `yaml:"top_k"`
}

// HTTPConfig throttles outbound requests. Zero RequestsPerSecond disables throttling.
type HTTPConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	DataGov   DataGovConfig   `yaml:"datagov"`
	Weather   WeatherConfig   `yaml:"weather"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	HTTP      HTTPConfig      `yaml:"http"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/agriinsight/config.yaml.
// If neither exists, it writes defaults to ~/.config/agriinsight/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		DataGov: DataGovConfig{
			BaseURL:     "https://api.data.gov.in",
			ResourceID:  "9ef84268-d588-465a-a308-a864a43d0070",
			APIKeyEnv:   "DATA_GOV_API_KEY",
			TimeoutSecs: 12,
			Limit:       500,
		},
		Weather: WeatherConfig{
			BaseURL:     "https://api.open-meteo.com/v1/forecast",
			TimeoutSecs: 12,
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			APIKeyEnv:   "GROQ_API_KEY",
			Model:       "llama-3.1-8b-instant",
			Temperature: 0.2,
			MaxTokens:   500,
			TimeoutSecs: 30,
		},
		Retrieval: RetrievalConfig{CorpusSize: 500, TopK: 4},
		HTTP:      HTTPConfig{RequestsPerSecond: 0, Burst: 1},
		Server:    ServerConfig{Host: "127.0.0.1", Port: 8080},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Timeout converts a seconds field into a duration.
func Timeout(secs int) time.Duration {
	return time.Duration(secs) * time.Second
}

// APIKey reads the secret named by envName; empty when unset.
func APIKey(envName string) string {
	if envName == "" {
		return ""
	}
	return os.Getenv(envName)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "agriinsight", "config.yaml"), nil
}

func applyConfigDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.DataGov.BaseURL == "" {
		cfg.DataGov.BaseURL = def.DataGov.BaseURL
	}
	if cfg.DataGov.ResourceID == "" {
		cfg.DataGov.ResourceID = def.DataGov.ResourceID
	}
	if cfg.DataGov.TimeoutSecs <= 0 {
		cfg.DataGov.TimeoutSecs = def.DataGov.TimeoutSecs
	}
	if cfg.DataGov.Limit <= 0 {
		cfg.DataGov.Limit = def.DataGov.Limit
	}
	if cfg.Weather.BaseURL == "" {
		cfg.Weather.BaseURL = def.Weather.BaseURL
	}
	if cfg.Weather.TimeoutSecs <= 0 {
		cfg.Weather.TimeoutSecs = def.Weather.TimeoutSecs
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = def.LLM.BaseURL
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = def.LLM.APIKeyEnv
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = def.LLM.MaxTokens
	}
	if cfg.LLM.TimeoutSecs <= 0 {
		cfg.LLM.TimeoutSecs = def.LLM.TimeoutSecs
	}
	if cfg.Retrieval.CorpusSize <= 0 {
		cfg.Retrieval.CorpusSize = def.Retrieval.CorpusSize
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.HTTP.Burst <= 0 {
		cfg.HTTP.Burst = 1
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}
