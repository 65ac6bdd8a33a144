package help

import "strings"

// Version is the cn release version, set at build time via -ldflags.
// Defaults to "dev" when built without version injection (e.g. `go run`).
var Version = "dev"

// Flag describes a command-line flag.
type Flag struct {
	Name string // e.g. "--watch" or "--sort <key>"
	Desc string
}

// Arg describes a positional argument.
type Arg struct {
	Name     string // e.g. "id" or "file"
	Desc     string
	Optional bool
}

// Command describes a cn subcommand (or the top-level binary when Name is "").
type Command struct {
	Name        string // "init", "session", etc; "" for top-level
	Synopsis    string // one-line description (lowercase, for --help header)
	Brief       string // short description for usage table (capitalized)
	Usage       string // full usage line, e.g. "cn list [--search <text>]"
	TableUsage  string // shortened usage for the top-level table (if different from Usage)
	Args        []Arg
	Flags       []Flag
	Description string   // multi-line prose (stored verbatim)
	Examples    []string // one per line, without leading 2-space indent
	SeeAlso     []string // man page cross-refs, e.g. "cn(1)"
	Remote      bool     // calls the transcription or chat model
}

// tableUsage returns TableUsage if set, otherwise Usage.
func (c Command) tableUsage() string {
	if c.TableUsage != "" {
		return c.TableUsage
	}
	return c.Usage
}

// ManName returns the man page name: "cn" for top-level, "cn-<name>" for subs.
func (c Command) ManName() string {
	if c.Name == "" {
		return "cn"
	}
	return "cn-" + strings.ReplaceAll(c.Name, " ", "-")
}

// TopLevel is the top-level cn command (used by FormatUsage).
var TopLevel = Command{
	Name:     "",
	Synopsis: "care visit notes from dictation",
}

var CmdInit = Command{
	Name:     "init",
	Synopsis: "write a default configuration",
	Brief:    "Write default config and create the data directory",
	Usage:    "cn init [data-dir]",
	Args: []Arg{
		{Name: "data-dir", Desc: "Where notes are stored (default: ~/.local/share/carenotes)", Optional: true},
	},
	Description: `Writes ~/.config/carenotes/config.toml if it does not exist and
creates the data directory and audio inbox. An existing config is
never overwritten.

The model credential is read from OPENAI_API_KEY (or the variable
named by api_key_env), which may also be set in a .env.local file.`,
	Examples: []string{
		"cn init                    Use the default data directory",
		"cn init ~/care/notes       Store notes under ~/care/notes",
	},
	SeeAlso: []string{"cn(1)", "cn-check(1)"},
}

var CmdSession = Command{
	Name:     "session",
	Remote:   true,
	Synopsis: "run an interactive note session",
	Brief:    "Drive a note session from JSON events on stdin",
	Usage:    "cn session [--watch] [--id <id>]",
	Flags: []Flag{
		{Name: "--watch", Desc: "Transcribe audio segments dropped into the inbox"},
		{Name: "--id <id>", Desc: "Load a saved note before reading events"},
	},
	Description: `Reads one JSON event per line from stdin and writes one JSON result
per line to stdout. Events:

  {"event":"transcript","text":"..."}     append dictated text
  {"event":"audio","path":"seg.webm"}     transcribe a segment and append
  {"event":"edit","text":"..."}           replace the raw notes
  {"event":"visit_type","visitType":"medication"}
  {"event":"enhance"}                     structure the notes with the model
  {"event":"save"}                        save (first save assigns an id)
  {"event":"load","id":"..."}             load a saved note
  {"event":"reset"}                       start a new note
  {"event":"show"}                        print the session
  {"event":"wait"}                        wait for enhance/audio to finish

Enhancement and audio run in the background; a result arriving after
reset or load is discarded. Failures are reported as
{"ok":false,"kind":...,"error":...,"suggestion":...}.`,
	Examples: []string{
		"cn session < visit.jsonl",
		"cn session --watch",
	},
	SeeAlso: []string{"cn(1)", "cn-transcribe(1)", "cn-enhance(1)"},
}

var CmdTranscribe = Command{
	Name:     "transcribe",
	Remote:   true,
	Synopsis: "transcribe an audio file to English text",
	Brief:    "Transcribe an audio file",
	Usage:    "cn transcribe <file>",
	Args: []Arg{
		{Name: "file", Desc: "Audio recording (webm, mp4, m4a, wav, mp3, ogg)"},
	},
	Description: `Sends the recording to the transcription model and prints the text.
Failed or empty attempts are retried (3 attempts, 1s apart by default).`,
	SeeAlso: []string{"cn(1)", "cn-session(1)"},
}

var CmdEnhance = Command{
	Name:       "enhance",
	Remote:     true,
	Synopsis:   "structure raw notes into a care report",
	Brief:      "Enhance raw notes from a file or stdin",
	Usage:      "cn enhance [--visit-type <type>] [--json] [file | -]",
	TableUsage: "cn enhance [file | -]",
	Args: []Arg{
		{Name: "file", Desc: "Raw notes (default: stdin)", Optional: true},
	},
	Flags: []Flag{
		{Name: "--visit-type <type>", Desc: "standard, medication or therapy (default: standard)"},
		{Name: "--json", Desc: "Print the structured report as JSON"},
	},
	Description: `Sends the notes to the model once (no retry) and prints the report.
Nothing is saved; use cn session to keep the result.`,
	Examples: []string{
		"cn enhance visit.txt",
		"echo \"Gave 9am meds, ate well\" | cn enhance --visit-type medication",
	},
	SeeAlso: []string{"cn(1)", "cn-session(1)"},
}

var CmdList = Command{
	Name:       "list",
	Synopsis:   "list saved notes",
	Brief:      "List saved notes",
	Usage:      "cn list [--search <text>] [--sort date|patient]",
	TableUsage: "cn list [--search X]",
	Flags: []Flag{
		{Name: "--search <text>", Desc: "Match patient, note text or date"},
		{Name: "--sort <key>", Desc: "date (newest first, default) or patient"},
	},
	SeeAlso: []string{"cn(1)", "cn-show(1)"},
}

var CmdShow = Command{
	Name:     "show",
	Synopsis: "display a saved note",
	Brief:    "Display a saved note",
	Usage:    "cn show <id> [--markdown | --json]",
	Args: []Arg{
		{Name: "id", Desc: "Note id (a unique prefix is enough)"},
	},
	Flags: []Flag{
		{Name: "--markdown", Desc: "Render as markdown with YAML frontmatter"},
		{Name: "--json", Desc: "Print the stored record"},
	},
	SeeAlso: []string{"cn(1)", "cn-list(1)"},
}

var CmdDelete = Command{
	Name:     "delete",
	Synopsis: "delete a saved note",
	Brief:    "Delete a saved note",
	Usage:    "cn delete <id>",
	Args: []Arg{
		{Name: "id", Desc: "Note id (a unique prefix is enough)"},
	},
	SeeAlso: []string{"cn(1)", "cn-clear(1)"},
}

var CmdClear = Command{
	Name:     "clear",
	Synopsis: "delete every saved note",
	Brief:    "Delete all notes",
	Usage:    "cn clear --yes",
	Flags: []Flag{
		{Name: "--yes", Desc: "Confirm deletion"},
	},
	SeeAlso: []string{"cn(1)", "cn-export(1)"},
}

var CmdExport = Command{
	Name:     "export",
	Synopsis: "export all notes to a file",
	Brief:    "Export notes to JSON (.zst compresses)",
	Usage:    "cn export <file>",
	Args: []Arg{
		{Name: "file", Desc: "Output path; a .zst suffix writes zstd"},
	},
	Examples: []string{
		"cn export backup.json",
		"cn export backup.json.zst",
	},
	SeeAlso: []string{"cn(1)", "cn-import(1)"},
}

var CmdImport = Command{
	Name:     "import",
	Synopsis: "import notes from an export file",
	Brief:    "Import notes from an export",
	Usage:    "cn import <file> [--replace]",
	Args: []Arg{
		{Name: "file", Desc: "File written by cn export"},
	},
	Flags: []Flag{
		{Name: "--replace", Desc: "Replace all notes instead of merging by id"},
	},
	SeeAlso: []string{"cn(1)", "cn-export(1)"},
}

var CmdStats = Command{
	Name:     "stats",
	Synopsis: "summarize saved notes",
	Brief:    "Show note counts by visit type",
	Usage:    "cn stats",
	SeeAlso:  []string{"cn(1)", "cn-list(1)"},
}

var CmdCheck = Command{
	Name:     "check",
	Synopsis: "validate config, store, and credentials",
	Brief:    "Validate config, store, and credentials",
	Usage:    "cn check",
	Description: `Runs diagnostic checks and prints a pass/warn/FAIL report:
  - Config file location
  - Data directory exists
  - Store readability and note count
  - Model credential set (and not the placeholder)
  - Configured models
  - Audio inbox and waiting segments`,
	SeeAlso: []string{"cn(1)", "cn-init(1)"},
}

var CmdVersion = Command{
	Name:     "version",
	Synopsis: "print version",
	Brief:    "Print version",
	Usage:    "cn version",
	SeeAlso:  []string{"cn(1)"},
}

// Subcommands is the ordered list of all subcommands.
var Subcommands = []Command{
	CmdInit,
	CmdSession,
	CmdTranscribe,
	CmdEnhance,
	CmdList,
	CmdShow,
	CmdDelete,
	CmdClear,
	CmdExport,
	CmdImport,
	CmdStats,
	CmdCheck,
	CmdVersion,
}

// Lookup returns the subcommand named name.
func Lookup(name string) (Command, bool) {
	for _, c := range Subcommands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}
