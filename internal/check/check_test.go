package check

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/suykerbuyk/carenotes/internal/config"
	"github.com/suykerbuyk/carenotes/internal/kv"
	"github.com/suykerbuyk/carenotes/internal/note"
	"github.com/suykerbuyk/carenotes/internal/store"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Inbox.Path = filepath.Join(cfg.DataDir, "inbox")
	return cfg
}

func TestCheckDataDir_Pass(t *testing.T) {
	r := CheckDataDir(t.TempDir())
	if r.Status != Pass {
		t.Errorf("expected Pass, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckDataDir_Fail(t *testing.T) {
	r := CheckDataDir("/nonexistent/carenotes/data")
	if r.Status != Fail {
		t.Errorf("expected Fail, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckConfig_MissingWarns(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	r := CheckConfig()
	if r.Status != Warn {
		t.Errorf("expected Warn, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckConfig_Pass(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	if _, _, err := config.WriteDefault(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	r := CheckConfig()
	if r.Status != Pass {
		t.Errorf("expected Pass, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckStore_NotCreated(t *testing.T) {
	cfg := testConfig(t)
	r := CheckStore(cfg)
	if r.Status != Warn {
		t.Errorf("expected Warn, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckStore_Counts(t *testing.T) {
	for _, backend := range []string{"sqlite", "file"} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Store.Backend = backend

			backing, err := kv.Open(backend, cfg.StorePath())
			if err != nil {
				t.Fatal(err)
			}
			s := store.New(backing, cfg.Store.Namespace)
			for _, id := range []string{"a", "b"} {
				if err := s.Save(note.CareNote{ID: id, RawContent: "x"}); err != nil {
					t.Fatal(err)
				}
			}
			backing.Close()

			r := CheckStore(cfg)
			if r.Status != Pass {
				t.Fatalf("expected Pass, got %s: %s", r.Status, r.Detail)
			}
			if !strings.HasSuffix(r.Detail, "(2 notes)") {
				t.Errorf("unexpected detail: %s", r.Detail)
			}
		})
	}
}

func TestCheckCredential(t *testing.T) {
	ocfg := config.DefaultConfig().OpenAI
	ocfg.APIKeyEnv = "CN_TEST_KEY"

	tests := []struct {
		value string
		want  Status
	}{
		{"", Warn},
		{config.PlaceholderAPIKey, Warn},
		{"sk-real", Pass},
	}
	for _, tt := range tests {
		t.Setenv("CN_TEST_KEY", tt.value)
		r := CheckCredential(ocfg)
		if r.Status != tt.want {
			t.Errorf("value %q: expected %s, got %s: %s", tt.value, tt.want, r.Status, r.Detail)
		}
	}
}

func TestCheckModels(t *testing.T) {
	ocfg := config.DefaultConfig().OpenAI
	if r := CheckModels(ocfg); r.Status != Pass {
		t.Errorf("expected Pass, got %s: %s", r.Status, r.Detail)
	}
	ocfg.Model = ""
	if r := CheckModels(ocfg); r.Status != Fail {
		t.Errorf("expected Fail, got %s", r.Status)
	}
}

func TestCheckInbox(t *testing.T) {
	cfg := testConfig(t)
	if r := CheckInbox(cfg.Inbox); r.Status != Warn {
		t.Errorf("expected Warn for missing inbox, got %s", r.Status)
	}

	os.MkdirAll(filepath.Join(cfg.Inbox.Path, ".processed"), 0o755)
	os.WriteFile(filepath.Join(cfg.Inbox.Path, "seg.webm"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(cfg.Inbox.Path, ".processed", "old.webm"), []byte("x"), 0o644)

	r := CheckInbox(cfg.Inbox)
	if r.Status != Pass {
		t.Fatalf("expected Pass, got %s: %s", r.Status, r.Detail)
	}
	if !strings.HasSuffix(r.Detail, "(1 waiting)") {
		t.Errorf("unexpected detail: %s", r.Detail)
	}
}

func TestReport_HasFailures_True(t *testing.T) {
	r := Report{Results: []Result{
		{Name: "a", Status: Pass},
		{Name: "b", Status: Fail},
	}}
	if !r.HasFailures() {
		t.Error("expected HasFailures() == true")
	}
}

func TestReport_HasFailures_False(t *testing.T) {
	r := Report{Results: []Result{
		{Name: "a", Status: Pass},
		{Name: "b", Status: Warn},
	}}
	if r.HasFailures() {
		t.Error("expected HasFailures() == false")
	}
}

func TestRun_Integration(t *testing.T) {
	cfg := testConfig(t)
	t.Setenv(cfg.OpenAI.KeyEnv(), "")

	report := Run(cfg)
	for _, res := range report.Results {
		if res.Status == Fail {
			t.Errorf("unexpected failure: %s: %s", res.Name, res.Detail)
		}
	}

	output := report.Format()
	if !strings.HasPrefix(output, "cn check\n") {
		t.Errorf("Format() = %q", output)
	}
	if !strings.Contains(output, "credential") {
		t.Error("credential check missing from report")
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{Pass, "pass"},
		{Warn, "warn"},
		{Fail, "FAIL"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
