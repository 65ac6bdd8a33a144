package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/suykerbuyk/carenotes/internal/config"
	"github.com/suykerbuyk/carenotes/internal/enhance"
	"github.com/suykerbuyk/carenotes/internal/help"
	"github.com/suykerbuyk/carenotes/internal/kv"
	"github.com/suykerbuyk/carenotes/internal/note"
	"github.com/suykerbuyk/carenotes/internal/store"
	"github.com/suykerbuyk/carenotes/internal/transcribe"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd, args := os.Args[1], os.Args[2:]

	switch cmd {
	case "help", "--help", "-h":
		if len(args) > 0 {
			if c, ok := help.Lookup(args[0]); ok {
				fmt.Print(help.FormatTerminal(c))
				return
			}
		}
		fmt.Print(help.FormatUsage(help.TopLevel, help.Subcommands))
		return
	case "version", "--version":
		fmt.Printf("cn v%s (carenotes)\n", help.Version)
		return
	}

	c, ok := help.Lookup(cmd)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
	if hasFlag(args, "--help") || hasFlag(args, "-h") {
		fmt.Print(help.FormatTerminal(c))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "init":
		runInit(cfg, args)
	case "session":
		runSession(ctx, cfg, args)
	case "transcribe":
		runTranscribe(ctx, cfg, args)
	case "enhance":
		runEnhance(ctx, cfg, args)
	case "list":
		runList(cfg, args)
	case "show":
		runShow(cfg, args)
	case "delete":
		runDelete(cfg, args)
	case "clear":
		runClear(cfg, args)
	case "export":
		runExport(cfg, args)
	case "import":
		runImport(cfg, args)
	case "stats":
		runStats(cfg)
	case "check":
		runCheck(cfg)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, help.FormatUsage(help.TopLevel, help.Subcommands))
}

// openStore opens the configured backend. The caller must call the returned
// close function.
func openStore(cfg config.Config) (*store.Store, func()) {
	backing, err := kv.Open(cfg.Store.Backend, cfg.StorePath())
	if err != nil {
		fatal("open store: %v", err)
	}
	return store.New(backing, cfg.Store.Namespace), func() { backing.Close() }
}

// clients builds the model clients, or fails with a hint naming the
// credential variable.
func clients(cfg config.Config) (*transcribe.Client, *enhance.Client) {
	key := cfg.OpenAI.APIKey()
	if key == "" {
		fatal("%s is not set (or is the placeholder); add it to the environment or .env.local", cfg.OpenAI.KeyEnv())
	}
	return transcribe.New(cfg.OpenAI, cfg.Transcription, key), enhance.New(cfg.OpenAI, key)
}

// resolveID finds the note whose id equals or uniquely starts with prefix.
func resolveID(st *store.Store, prefix string) string {
	notes, err := st.All()
	if err != nil {
		fatal("read notes: %v", err)
	}
	var matches []string
	for _, n := range notes {
		if n.ID == prefix {
			return n.ID
		}
		if strings.HasPrefix(n.ID, prefix) {
			matches = append(matches, n.ID)
		}
	}
	switch len(matches) {
	case 0:
		fatal("%s: %v", prefix, store.ErrNotFound)
	case 1:
		return matches[0]
	}
	fatal("%s is ambiguous (%d notes match)", prefix, len(matches))
	return ""
}

// failed reports a classified error with its suggested next action.
func failed(err error) {
	fmt.Fprintf(os.Stderr, "cn: %v\n", err)
	if s := note.Suggestion(err); s != "" && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "    %s\n", s)
	}
	os.Exit(1)
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(a, flag+"=") {
			return strings.TrimPrefix(a, flag+"=")
		}
	}
	return ""
}

// positional returns args that are neither flags nor flag values. valued
// lists the flags that take a value.
func positional(args []string, valued ...string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "-" || !strings.HasPrefix(a, "-") {
			out = append(out, a)
			continue
		}
		for _, v := range valued {
			if a == v {
				i++
				break
			}
		}
	}
	return out
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "cn: "+format+"\n", args...)
	os.Exit(1)
}
