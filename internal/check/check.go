// Package check inspects the local installation for `cn check`.
package check

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/suykerbuyk/carenotes/internal/config"
	"github.com/suykerbuyk/carenotes/internal/discover"
	"github.com/suykerbuyk/carenotes/internal/kv"
	"github.com/suykerbuyk/carenotes/internal/store"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "cn check\n\n  no checks ran\n"
	}

	// Find max name length for alignment.
	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("cn check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports the resolved config path. A missing file is fine;
// defaults apply.
func CheckConfig() Result {
	cfgPath := filepath.Join(config.ConfigDir(), "config.toml")
	if _, err := os.Stat(cfgPath); err != nil {
		return Result{Name: "config", Status: Warn, Detail: config.CompressHome(cfgPath) + " not found (using defaults, run cn init)"}
	}
	return Result{
		Name:   "config",
		Status: Pass,
		Detail: config.CompressHome(cfgPath),
	}
}

// CheckDataDir checks whether the data directory exists.
func CheckDataDir(path string) Result {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return Result{Name: "data", Status: Pass, Detail: config.CompressHome(path)}
	}
	return Result{Name: "data", Status: Fail, Detail: path + " not found"}
}

// CheckStore opens the configured backend and reports the record count.
func CheckStore(cfg config.Config) Result {
	name := "store:" + cfg.Store.Backend
	path := cfg.StorePath()
	if _, err := os.Stat(path); err != nil {
		return Result{Name: name, Status: Warn, Detail: config.CompressHome(path) + " not created yet"}
	}

	backing, err := kv.Open(cfg.Store.Backend, path)
	if err != nil {
		return Result{Name: name, Status: Fail, Detail: err.Error()}
	}
	defer backing.Close()

	n, err := store.New(backing, cfg.Store.Namespace).Count()
	if err != nil {
		return Result{Name: name, Status: Fail, Detail: err.Error()}
	}
	return Result{Name: name, Status: Pass, Detail: fmt.Sprintf("%s (%d notes)", config.CompressHome(path), n)}
}

// CheckCredential reports whether the model credential is usable. A missing
// or placeholder value disables transcription and enhancement.
func CheckCredential(ocfg config.OpenAIConfig) Result {
	keyEnv := ocfg.KeyEnv()
	raw := strings.TrimSpace(os.Getenv(keyEnv))
	switch {
	case raw == "":
		return Result{Name: "credential", Status: Warn, Detail: keyEnv + " not set (transcription and enhancement disabled)"}
	case raw == config.PlaceholderAPIKey:
		return Result{Name: "credential", Status: Warn, Detail: keyEnv + " is the placeholder value (transcription and enhancement disabled)"}
	}
	return Result{Name: "credential", Status: Pass, Detail: keyEnv + " set"}
}

// CheckModels reports the configured endpoint and models.
func CheckModels(ocfg config.OpenAIConfig) Result {
	if ocfg.Model == "" || ocfg.TranscriptionModel == "" {
		return Result{Name: "models", Status: Fail, Detail: "model and transcription_model must be set"}
	}
	return Result{
		Name:   "models",
		Status: Pass,
		Detail: fmt.Sprintf("%s, %s via %s", ocfg.Model, ocfg.TranscriptionModel, ocfg.BaseURL),
	}
}

// CheckInbox reports whether the audio inbox exists and how many segments
// are waiting in it.
func CheckInbox(icfg config.InboxConfig) Result {
	info, err := os.Stat(icfg.Path)
	if err != nil || !info.IsDir() {
		return Result{Name: "inbox", Status: Warn, Detail: config.CompressHome(icfg.Path) + " not found (created by cn session --watch)"}
	}
	files, err := discover.Discover(icfg.Path, icfg.Extensions)
	if err != nil {
		return Result{Name: "inbox", Status: Warn, Detail: err.Error()}
	}
	pending := 0
	for _, f := range files {
		if filepath.Dir(f.Path) == icfg.Path {
			pending++
		}
	}
	return Result{Name: "inbox", Status: Pass, Detail: fmt.Sprintf("%s (%d waiting)", config.CompressHome(icfg.Path), pending)}
}

// Run executes all checks against the given config and returns a report.
func Run(cfg config.Config) Report {
	var results []Result

	results = append(results, CheckConfig())
	results = append(results, CheckDataDir(cfg.DataDir))
	results = append(results, CheckStore(cfg))
	results = append(results, CheckCredential(cfg.OpenAI))
	results = append(results, CheckModels(cfg.OpenAI))
	results = append(results, CheckInbox(cfg.Inbox))

	return Report{Results: results}
}
