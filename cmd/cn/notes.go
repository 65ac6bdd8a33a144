package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/suykerbuyk/carenotes/internal/archive"
	"github.com/suykerbuyk/carenotes/internal/check"
	"github.com/suykerbuyk/carenotes/internal/config"
	"github.com/suykerbuyk/carenotes/internal/history"
	"github.com/suykerbuyk/carenotes/internal/render"
)

func runInit(cfg config.Config, args []string) {
	dataDir := cfg.DataDir
	inbox := cfg.Inbox.Path
	if pos := positional(args); len(pos) > 0 {
		abs, err := filepath.Abs(pos[0])
		if err != nil {
			fatal("resolve %s: %v", pos[0], err)
		}
		dataDir = abs
		inbox = filepath.Join(abs, "inbox")
	}

	path, action, err := config.WriteDefault(dataDir)
	if err != nil {
		fatal("%v", err)
	}
	for _, dir := range []string{dataDir, inbox} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatal("create %s: %v", dir, err)
		}
	}

	fmt.Printf("config: %s (%s)\n", config.CompressHome(path), action)
	fmt.Printf("data:   %s\n", config.CompressHome(dataDir))
	fmt.Printf("inbox:  %s\n", config.CompressHome(inbox))
	if !cfg.OpenAI.Configured() {
		fmt.Printf("\nSet %s in the environment or in .env.local to enable transcription and enhancement.\n", cfg.OpenAI.KeyEnv())
	}
}

func runList(cfg config.Config, args []string) {
	st, closeStore := openStore(cfg)
	defer closeStore()

	key, ok := history.ParseSortKey(flagValue(args, "--sort"))
	if !ok {
		fatal("--sort must be date or patient")
	}
	query := flagValue(args, "--search")

	notes, err := st.All()
	if err != nil {
		fatal("read notes: %v", err)
	}
	notes = history.Filter(notes, query)
	history.Sort(notes, key)
	fmt.Print(history.Format(notes, query, time.Now()))
}

func runShow(cfg config.Config, args []string) {
	pos := positional(args)
	if len(pos) < 1 {
		fatal("usage: cn show <id> [--markdown | --json]")
	}
	st, closeStore := openStore(cfg)
	defer closeStore()

	n, err := st.Get(resolveID(st, pos[0]))
	if err != nil {
		fatal("%v", err)
	}

	switch {
	case hasFlag(args, "--json"):
		data, err := json.MarshalIndent(n, "", "  ")
		if err != nil {
			fatal("encode note: %v", err)
		}
		fmt.Println(string(data))
	case hasFlag(args, "--markdown"):
		md, err := render.CareNote(n)
		if err != nil {
			fatal("%v", err)
		}
		fmt.Print(md)
	default:
		fmt.Print(render.Terminal(n))
	}
}

func runDelete(cfg config.Config, args []string) {
	pos := positional(args)
	if len(pos) < 1 {
		fatal("usage: cn delete <id>")
	}
	st, closeStore := openStore(cfg)
	defer closeStore()

	id := resolveID(st, pos[0])
	if err := st.Delete(id); err != nil {
		fatal("delete: %v", err)
	}
	fmt.Printf("deleted %s\n", id)
}

func runClear(cfg config.Config, args []string) {
	if !hasFlag(args, "--yes") {
		fatal("refusing to delete all notes without --yes")
	}
	st, closeStore := openStore(cfg)
	defer closeStore()

	n, err := st.Count()
	if err != nil {
		fatal("read notes: %v", err)
	}
	if err := st.Clear(); err != nil {
		fatal("clear: %v", err)
	}
	fmt.Printf("deleted %s notes\n", humanize.Comma(int64(n)))
}

func runExport(cfg config.Config, args []string) {
	pos := positional(args)
	if len(pos) < 1 {
		fatal("usage: cn export <file>")
	}
	st, closeStore := openStore(cfg)
	defer closeStore()

	notes, err := st.All()
	if err != nil {
		fatal("read notes: %v", err)
	}
	if err := archive.Export(notes, pos[0]); err != nil {
		fatal("export: %v", err)
	}
	size := "?"
	if info, err := os.Stat(pos[0]); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	fmt.Printf("exported %s notes to %s (%s)\n", humanize.Comma(int64(len(notes))), pos[0], size)
}

func runImport(cfg config.Config, args []string) {
	pos := positional(args)
	if len(pos) < 1 {
		fatal("usage: cn import <file> [--replace]")
	}
	incoming, err := archive.Import(pos[0])
	if err != nil {
		failed(err)
	}

	st, closeStore := openStore(cfg)
	defer closeStore()

	if hasFlag(args, "--replace") {
		if err := st.Replace(incoming); err != nil {
			failed(err)
		}
		fmt.Printf("replaced store with %s notes\n", humanize.Comma(int64(len(incoming))))
		return
	}

	existing, err := st.All()
	if err != nil {
		fatal("read notes: %v", err)
	}
	merged, added, updated := archive.Merge(existing, incoming)
	if err := st.Replace(merged); err != nil {
		failed(err)
	}
	fmt.Printf("imported %d new, %d updated (%d total)\n", added, updated, len(merged))
}

func runStats(cfg config.Config) {
	st, closeStore := openStore(cfg)
	defer closeStore()

	notes, err := st.All()
	if err != nil {
		fatal("read notes: %v", err)
	}
	fmt.Print(history.FormatSummary(history.Summarize(notes), time.Now()))
}

func runCheck(cfg config.Config) {
	report := check.Run(cfg)
	fmt.Print(report.Format())
	if report.HasFailures() {
		os.Exit(1)
	}
}
