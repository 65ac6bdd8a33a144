package help

import (
	"fmt"
	"strings"
	"testing"
)

// expectedTerminal maps command name → exact expected terminal output.
var expectedTerminal = map[string]string{
	"export": "cn export \u2014 export all notes to a file\n" +
		"\n" +
		"Usage: cn export <file>\n" +
		"\n" +
		"Arguments:\n" +
		"  file   Output path; a .zst suffix writes zstd\n" +
		"\n" +
		"Examples:\n" +
		"  cn export backup.json\n" +
		"  cn export backup.json.zst\n",

	"import": "cn import \u2014 import notes from an export file\n" +
		"\n" +
		"Usage: cn import <file> [--replace]\n" +
		"\n" +
		"Arguments:\n" +
		"  file        File written by cn export\n" +
		"\n" +
		"Flags:\n" +
		"  --replace   Replace all notes instead of merging by id\n",

	"list": "cn list \u2014 list saved notes\n" +
		"\n" +
		"Usage: cn list [--search <text>] [--sort date|patient]\n" +
		"\n" +
		"Flags:\n" +
		"  --search <text>   Match patient, note text or date\n" +
		"  --sort <key>      date (newest first, default) or patient\n",

	"check": "cn check \u2014 validate config, store, and credentials\n" +
		"\n" +
		"Usage: cn check\n" +
		"\n" +
		"Runs diagnostic checks and prints a pass/warn/FAIL report:\n" +
		"  - Config file location\n" +
		"  - Data directory exists\n" +
		"  - Store readability and note count\n" +
		"  - Model credential set (and not the placeholder)\n" +
		"  - Configured models\n" +
		"  - Audio inbox and waiting segments\n",

	"version": "cn version \u2014 print version\n" +
		"\n" +
		"Usage: cn version\n",
}

func TestFormatTerminal(t *testing.T) {
	for name, expected := range expectedTerminal {
		t.Run(name, func(t *testing.T) {
			cmd, ok := Lookup(name)
			if !ok {
				t.Fatalf("no command %q", name)
			}
			got := FormatTerminal(cmd)
			if got != expected {
				t.Errorf("FormatTerminal(%q) mismatch.\n--- expected ---\n%s\n--- got ---\n%s\n--- diff ---\n%s",
					name, quote(expected), quote(got), diff(expected, got))
			}
		})
	}
}

func TestFormatTerminal_AllCommands(t *testing.T) {
	for _, cmd := range Subcommands {
		t.Run(cmd.Name, func(t *testing.T) {
			out := FormatTerminal(cmd)
			prefix := fmt.Sprintf("cn %s \u2014 %s\n", cmd.Name, cmd.Synopsis)
			if !strings.HasPrefix(out, prefix) {
				t.Errorf("header mismatch: %q", out[:min(len(out), len(prefix)+20)])
			}
			if !strings.Contains(out, "Usage: "+cmd.Usage+"\n") {
				t.Error("missing usage line")
			}
			for _, f := range cmd.Flags {
				if !strings.Contains(out, "  "+f.Name+" ") {
					t.Errorf("missing flag %q", f.Name)
				}
			}
			if cmd.Description != "" && !strings.Contains(out, cmd.Description) {
				t.Error("missing description")
			}
		})
	}
}

func TestFormatUsage(t *testing.T) {
	got := FormatUsage(TopLevel, Subcommands)

	if !strings.HasPrefix(got, fmt.Sprintf("cn v%s \u2014 care visit notes from dictation\n", Version)) {
		t.Errorf("header mismatch: %q", got)
	}
	for _, cmd := range Subcommands {
		if !strings.Contains(got, "  "+cmd.tableUsage()+" ") {
			t.Errorf("usage table missing %q", cmd.tableUsage())
		}
	}
	if !strings.Contains(got, "  cn help [command] ") {
		t.Error("help entry missing")
	}
	if !strings.HasSuffix(got, "Configuration: ~/.config/carenotes/config.toml\n") {
		t.Errorf("footer mismatch: %q", got)
	}

	// Briefs start in one column.
	col := -1
	for _, line := range strings.Split(got, "\n") {
		for _, cmd := range Subcommands {
			if strings.HasPrefix(line, "  "+cmd.tableUsage()+" ") && strings.HasSuffix(line, cmd.Brief) {
				c := len(line) - len(cmd.Brief)
				if col == -1 {
					col = c
				} else if c != col {
					t.Errorf("brief for %q at column %d, want %d", cmd.Name, c, col)
				}
			}
		}
	}
	if col == -1 {
		t.Error("no table rows found")
	}
}

func TestRegistryCompleteness(t *testing.T) {
	expectedNames := []string{
		"init", "session", "transcribe", "enhance", "list", "show",
		"delete", "clear", "export", "import", "stats", "check", "version",
	}
	if len(Subcommands) != len(expectedNames) {
		t.Fatalf("expected %d subcommands, got %d", len(expectedNames), len(Subcommands))
	}
	for i, name := range expectedNames {
		if Subcommands[i].Name != name {
			t.Errorf("Subcommands[%d].Name = %q, want %q", i, Subcommands[i].Name, name)
		}
		if Subcommands[i].Synopsis == "" {
			t.Errorf("Subcommands[%d] (%s) has empty Synopsis", i, name)
		}
		if Subcommands[i].Usage == "" {
			t.Errorf("Subcommands[%d] (%s) has empty Usage", i, name)
		}
		if Subcommands[i].Brief == "" {
			t.Errorf("Subcommands[%d] (%s) has empty Brief", i, name)
		}
	}
}

func TestLookup(t *testing.T) {
	if c, ok := Lookup("session"); !ok || c.Name != "session" {
		t.Errorf("Lookup(session) = %v, %v", c.Name, ok)
	}
	if _, ok := Lookup("hook"); ok {
		t.Error("Lookup(hook) should fail")
	}
}

func TestManName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "cn"},
		{"init", "cn-init"},
		{"session", "cn-session"},
		{"a b", "cn-a-b"},
	}
	for _, tt := range tests {
		c := Command{Name: tt.name}
		if got := c.ManName(); got != tt.want {
			t.Errorf("Command{Name: %q}.ManName() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestEscapeRoff(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`simple text`, `simple text`},
		{`back\slash`, `back\\slash`},
		{`.leading dot`, `\&.leading dot`},
		{"line1\n.line2", "line1\n\\&.line2"},
		{`--flag`, `\-\-flag`},
		{`a-b`, `a\-b`},
		{`.env.local`, `\&.env.local`},
	}
	for _, tt := range tests {
		got := escapeRoff(tt.input)
		if got != tt.want {
			t.Errorf("escapeRoff(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatRoffStructure(t *testing.T) {
	fixedDate := "2026-03-14"

	for _, cmd := range Subcommands {
		t.Run(cmd.Name, func(t *testing.T) {
			out := FormatRoff(cmd, fixedDate)

			required := []string{".TH", ".SH NAME", ".SH SYNOPSIS"}
			for _, section := range required {
				if !strings.Contains(out, section) {
					t.Errorf("FormatRoff(%q) missing required section %q", cmd.Name, section)
				}
			}

			expectedTH := strings.ToUpper(cmd.ManName())
			if !strings.Contains(out, ".TH "+expectedTH) {
				t.Errorf("FormatRoff(%q) .TH should contain %q", cmd.Name, expectedTH)
			}
			if !strings.Contains(out, `"Care Notes Manual"`) {
				t.Errorf("FormatRoff(%q) missing manual title", cmd.Name)
			}

			if cmd.Description != "" && !strings.Contains(out, ".SH DESCRIPTION") {
				t.Errorf("FormatRoff(%q) has Description but missing .SH DESCRIPTION", cmd.Name)
			}
			if (len(cmd.Args) > 0 || len(cmd.Flags) > 0) && !strings.Contains(out, ".SH OPTIONS") {
				t.Errorf("FormatRoff(%q) has Args/Flags but missing .SH OPTIONS", cmd.Name)
			}
			if len(cmd.Examples) > 0 && !strings.Contains(out, ".SH EXAMPLES") {
				t.Errorf("FormatRoff(%q) has Examples but missing .SH EXAMPLES", cmd.Name)
			}
			if len(cmd.SeeAlso) > 0 && !strings.Contains(out, ".SH SEE ALSO") {
				t.Errorf("FormatRoff(%q) has SeeAlso but missing .SH SEE ALSO", cmd.Name)
			}
		})
	}
}

func TestFormatRoffTopLevelStructure(t *testing.T) {
	out := FormatRoffTopLevel(TopLevel, Subcommands, "2026-03-14")

	required := []string{
		".TH CN 1",
		".SH NAME",
		".SH SYNOPSIS",
		".SH DESCRIPTION",
		".SH COMMANDS",
		".SH CONFIGURATION",
		".SH SEE ALSO",
	}
	for _, section := range required {
		if !strings.Contains(out, section) {
			t.Errorf("FormatRoffTopLevel missing section %q", section)
		}
	}

	for _, cmd := range Subcommands {
		escaped := escapeRoff(cmd.Brief)
		if !strings.Contains(out, escaped) {
			t.Errorf("FormatRoffTopLevel missing subcommand brief %q (escaped: %q)", cmd.Brief, escaped)
		}
	}
}

func TestFormatRoffEscapesDescription(t *testing.T) {
	out := FormatRoff(CmdInit, "2026-03-14")
	if strings.Contains(out, "\n.env") {
		t.Error("FormatRoff(init) emitted an unescaped leading dot")
	}
	if !strings.Contains(out, `OPENAI_API_KEY`) {
		t.Error("FormatRoff(init) lost description text")
	}
}

// quote shows a string with escape sequences visible.
func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// diff shows a line-by-line comparison highlighting the first difference.
func diff(expected, got string) string {
	el := strings.Split(expected, "\n")
	gl := strings.Split(got, "\n")
	max := len(el)
	if len(gl) > max {
		max = len(gl)
	}
	var b strings.Builder
	for i := 0; i < max; i++ {
		var e, g string
		if i < len(el) {
			e = el[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if e != g {
			fmt.Fprintf(&b, "! line %d:\n  exp: %q\n  got: %q\n", i+1, e, g)
		}
	}
	return b.String()
}

func TestFormatRoffEnvironment(t *testing.T) {
	for _, cmd := range Subcommands {
		out := FormatRoff(cmd, "2026-03-14")
		has := strings.Contains(out, ".SH ENVIRONMENT\n")
		if has != cmd.Remote {
			t.Errorf("FormatRoff(%q) ENVIRONMENT section present=%v, want %v", cmd.Name, has, cmd.Remote)
		}
		if !strings.Contains(out, ".SH FILES\n") {
			t.Errorf("FormatRoff(%q) missing FILES section", cmd.Name)
		}
	}
	if !strings.Contains(FormatRoffTopLevel(TopLevel, Subcommands, ""), "OPENAI_API_KEY") {
		t.Error("top-level page does not document the credential variable")
	}
}
