package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// PlaceholderAPIKey is the value shipped in example env files. A key equal to
// it is treated as unset.
const PlaceholderAPIKey = "your_openai_api_key_here"

// Config holds all carenotes configuration.
type Config struct {
	DataDir string `toml:"data_dir"`

	Store         StoreConfig         `toml:"store"`
	OpenAI        OpenAIConfig        `toml:"openai"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Inbox         InboxConfig         `toml:"inbox"`
}

type StoreConfig struct {
	Backend   string `toml:"backend"` // "sqlite" or "file"
	Namespace string `toml:"namespace"`
}

type OpenAIConfig struct {
	BaseURL            string  `toml:"base_url"`
	APIKeyEnv          string  `toml:"api_key_env"`
	Model              string  `toml:"model"`
	TranscriptionModel string  `toml:"transcription_model"`
	Temperature        float64 `toml:"temperature"`
	MaxTokens          int     `toml:"max_tokens"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
}

type TranscriptionConfig struct {
	MaxAttempts  int `toml:"max_attempts"`
	RetryDelayMS int `toml:"retry_delay_ms"`
}

type InboxConfig struct {
	Path       string   `toml:"path"`
	Extensions []string `toml:"extensions"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir: "~/.local/share/carenotes",
		Store: StoreConfig{
			Backend:   "sqlite",
			Namespace: "care-notes",
		},
		OpenAI: OpenAIConfig{
			BaseURL:            "https://api.openai.com/v1",
			APIKeyEnv:          "OPENAI_API_KEY",
			Model:              "gpt-4o",
			TranscriptionModel: "whisper-1",
			Temperature:        0.3,
			MaxTokens:          2000,
			TimeoutSeconds:     60,
		},
		Transcription: TranscriptionConfig{
			MaxAttempts:  3,
			RetryDelayMS: 1000,
		},
		Inbox: InboxConfig{
			Path:       "~/.local/share/carenotes/inbox",
			Extensions: []string{".webm", ".mp4", ".m4a", ".wav", ".mp3", ".ogg", ".mpeg"},
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
// It also loads .env.local and .env files so the API key can live beside
// the config rather than in the shell profile.
func Load() (Config, error) {
	cfg := DefaultConfig()

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.Inbox.Path = expandHome(cfg.Inbox.Path)

	loadEnvFiles()

	return cfg, nil
}

// loadEnvFiles loads dotenv files from the working directory and the config
// directory. Variables already present in the environment are kept.
func loadEnvFiles() {
	for _, p := range envPaths() {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Printf("warning: could not load %s: %v", p, err)
		}
	}
}

func envPaths() []string {
	paths := []string{".env.local", ".env"}
	dir := ConfigDir()
	return append(paths, filepath.Join(dir, ".env.local"), filepath.Join(dir, ".env"))
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "carenotes", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "carenotes", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// APIKey returns the credential named by APIKeyEnv, or "" when it is unset
// or still the placeholder value.
func (o OpenAIConfig) APIKey() string {
	key := strings.TrimSpace(os.Getenv(o.keyEnv()))
	if key == "" || key == PlaceholderAPIKey {
		return ""
	}
	return key
}

// Configured reports whether transcription and enhancement can be used.
func (o OpenAIConfig) Configured() bool {
	return o.APIKey() != ""
}

// KeyEnv returns the environment variable consulted for the credential.
func (o OpenAIConfig) KeyEnv() string { return o.keyEnv() }

func (o OpenAIConfig) keyEnv() string {
	if o.APIKeyEnv == "" {
		return "OPENAI_API_KEY"
	}
	return o.APIKeyEnv
}

// Timeout is the transport timeout applied to model calls.
func (o OpenAIConfig) Timeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// RetryDelay is the fixed pause between transcription attempts.
func (t TranscriptionConfig) RetryDelay() time.Duration {
	if t.RetryDelayMS < 0 {
		return 0
	}
	return time.Duration(t.RetryDelayMS) * time.Millisecond
}

// StorePath returns the path of the backing store file for the configured
// backend.
func (c Config) StorePath() string {
	if c.Store.Backend == "file" {
		return filepath.Join(c.DataDir, "notes.json")
	}
	return filepath.Join(c.DataDir, "notes.db")
}
