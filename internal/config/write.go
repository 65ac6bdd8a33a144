package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the carenotes config directory path.
// Uses $XDG_CONFIG_HOME/carenotes if set, otherwise ~/.config/carenotes.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "carenotes")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "carenotes")
}

// WriteDefault writes a default config.toml using dataDir.
// Returns the config file path and "created", or "exists" when a config is
// already present (it is never overwritten).
func WriteDefault(dataDir string) (string, string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(path); err == nil {
		return path, "exists", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create config dir: %w", err)
	}

	portable := CompressHome(dataDir)

	content := fmt.Sprintf(`data_dir = %q

[store]
backend = "sqlite"
namespace = "care-notes"

[openai]
base_url = "https://api.openai.com/v1"
api_key_env = "OPENAI_API_KEY"
model = "gpt-4o"
transcription_model = "whisper-1"
temperature = 0.3
max_tokens = 2000
timeout_seconds = 60

[transcription]
max_attempts = 3
retry_delay_ms = 1000

[inbox]
path = %q
extensions = [".webm", ".mp4", ".m4a", ".wav", ".mp3", ".ogg", ".mpeg"]
`, portable, portable+"/inbox")

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", "", fmt.Errorf("write config: %w", err)
	}

	return path, "created", nil
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
