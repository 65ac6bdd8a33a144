package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DataDir != "~/.local/share/carenotes" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("Store.Backend = %q", cfg.Store.Backend)
	}
	if cfg.Store.Namespace != "care-notes" {
		t.Errorf("Store.Namespace = %q", cfg.Store.Namespace)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("OpenAI.Model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.TranscriptionModel != "whisper-1" {
		t.Errorf("OpenAI.TranscriptionModel = %q", cfg.OpenAI.TranscriptionModel)
	}
	if cfg.OpenAI.Temperature != 0.3 {
		t.Errorf("OpenAI.Temperature = %v", cfg.OpenAI.Temperature)
	}
	if cfg.OpenAI.MaxTokens != 2000 {
		t.Errorf("OpenAI.MaxTokens = %d", cfg.OpenAI.MaxTokens)
	}
	if cfg.Transcription.MaxAttempts != 3 {
		t.Errorf("Transcription.MaxAttempts = %d", cfg.Transcription.MaxAttempts)
	}
	if cfg.Transcription.RetryDelay() != time.Second {
		t.Errorf("Transcription.RetryDelay = %v", cfg.Transcription.RetryDelay())
	}
}

func TestLoad_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if strings.HasPrefix(cfg.DataDir, "~/") {
		t.Errorf("DataDir not expanded: %q", cfg.DataDir)
	}
	if !strings.HasSuffix(cfg.DataDir, ".local/share/carenotes") {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	configDir := filepath.Join(xdg, "carenotes")
	os.MkdirAll(configDir, 0o755)

	tomlContent := `data_dir = "/srv/notes"

[store]
backend = "file"

[openai]
model = "gpt-4o-mini"
timeout_seconds = 15

[transcription]
max_attempts = 5
retry_delay_ms = 250
`
	os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(tomlContent), 0o644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataDir != "/srv/notes" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Store.Backend = %q", cfg.Store.Backend)
	}
	if cfg.StorePath() != "/srv/notes/notes.json" {
		t.Errorf("StorePath = %q", cfg.StorePath())
	}
	// Unset keys keep their defaults.
	if cfg.Store.Namespace != "care-notes" {
		t.Errorf("Store.Namespace = %q", cfg.Store.Namespace)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("OpenAI.Model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Timeout() != 15*time.Second {
		t.Errorf("OpenAI.Timeout = %v", cfg.OpenAI.Timeout())
	}
	if cfg.Transcription.MaxAttempts != 5 {
		t.Errorf("Transcription.MaxAttempts = %d", cfg.Transcription.MaxAttempts)
	}
	if cfg.Transcription.RetryDelay() != 250*time.Millisecond {
		t.Errorf("RetryDelay = %v", cfg.Transcription.RetryDelay())
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())

	configDir := filepath.Join(xdg, "carenotes")
	os.MkdirAll(configDir, 0o755)
	os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("data_dir = \"~/notes\"\n[inbox]\npath = \"~/notes/in\"\n"), 0o644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if want := filepath.Join(home, "notes"); cfg.DataDir != want {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, want)
	}
	if want := filepath.Join(home, "notes", "in"); cfg.Inbox.Path != want {
		t.Errorf("Inbox.Path = %q, want %q", cfg.Inbox.Path, want)
	}
}

func TestLoad_XDGPriority(t *testing.T) {
	xdg := t.TempDir()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	xdgDir := filepath.Join(xdg, "carenotes")
	os.MkdirAll(xdgDir, 0o755)
	os.WriteFile(filepath.Join(xdgDir, "config.toml"), []byte(`data_dir = "/from-xdg"`), 0o644)

	homeDir := filepath.Join(home, ".config", "carenotes")
	os.MkdirAll(homeDir, 0o755)
	os.WriteFile(filepath.Join(homeDir, "config.toml"), []byte(`data_dir = "/from-home"`), 0o644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataDir != "/from-xdg" {
		t.Errorf("DataDir = %q, want /from-xdg (XDG should take priority)", cfg.DataDir)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	configDir := filepath.Join(xdg, "carenotes")
	os.MkdirAll(configDir, 0o755)
	os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`data_dir = [broken`), 0o644)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoad_EnvLocalFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CN_TEST_DOTENV_KEY", "")
	os.Unsetenv("CN_TEST_DOTENV_KEY")

	wd := t.TempDir()
	t.Chdir(wd)
	os.WriteFile(filepath.Join(wd, ".env.local"), []byte("CN_TEST_DOTENV_KEY=sk-from-file\n"), 0o644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.OpenAI.APIKeyEnv = "CN_TEST_DOTENV_KEY"
	if got := cfg.OpenAI.APIKey(); got != "sk-from-file" {
		t.Errorf("APIKey = %q, want sk-from-file", got)
	}
}

func TestAPIKey_Placeholder(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"   ", false},
		{PlaceholderAPIKey, false},
		{"sk-real-key", true},
	}
	for _, tt := range tests {
		t.Setenv("CN_TEST_KEY", tt.value)
		o := OpenAIConfig{APIKeyEnv: "CN_TEST_KEY"}
		if got := o.Configured(); got != tt.want {
			t.Errorf("Configured with %q = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestKeyEnvDefault(t *testing.T) {
	if got := (OpenAIConfig{}).KeyEnv(); got != "OPENAI_API_KEY" {
		t.Errorf("KeyEnv = %q", got)
	}
}

func TestStorePath(t *testing.T) {
	cfg := Config{DataDir: "/home/user/.local/share/carenotes", Store: StoreConfig{Backend: "sqlite"}}
	if got := cfg.StorePath(); got != "/home/user/.local/share/carenotes/notes.db" {
		t.Errorf("StorePath = %q", got)
	}
}
