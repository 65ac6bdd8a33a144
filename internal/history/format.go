package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/suykerbuyk/carenotes/internal/note"
)

const previewLen = 48

// Format renders notes as an aligned listing. now anchors the relative
// "updated" column.
func Format(notes []note.CareNote, query string, now time.Time) string {
	if len(notes) == 0 {
		if query != "" {
			return fmt.Sprintf("  No notes match %q.\n", query)
		}
		return "  No notes saved yet. Run `cn session` to write one.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %-8s  %-10s %-5s  %-20s %-10s %-3s %-14s %s\n",
		"ID", "DATE", "TIME", "PATIENT", "VISIT", "ENH", "UPDATED", "NOTE")
	for _, n := range notes {
		enh := "-"
		if n.EnhancedContent != nil {
			enh = "yes"
		}
		fmt.Fprintf(&b, "  %-8s  %-10s %-5s  %-20s %-10s %-3s %-14s %s\n",
			shortID(n.ID), n.Date, n.Time, truncate(n.Patient, 20), n.VisitType, enh,
			relative(n.UpdatedAt, now), preview(n.RawContent))
	}
	fmt.Fprintf(&b, "\n  %s notes\n", humanize.Comma(int64(len(notes))))
	return b.String()
}

// FormatSummary renders a Summary as aligned terminal output.
func FormatSummary(s Summary, now time.Time) string {
	var b strings.Builder
	b.WriteString("Notes\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "total", humanize.Comma(int64(s.Total)))
	fmt.Fprintf(&b, "  %-20s %s\n", "enhanced", humanize.Comma(int64(s.Enhanced)))
	fmt.Fprintf(&b, "  %-20s %s\n", "patients", humanize.Comma(int64(s.Patients)))
	if !s.LastUpdated.IsZero() {
		fmt.Fprintf(&b, "  %-20s %s\n", "last updated", humanize.RelTime(s.LastUpdated, now, "ago", "from now"))
	}
	if s.Total > 0 {
		b.WriteString("\nVisit Types\n")
		for _, v := range note.VisitTypes {
			c := s.ByVisitType[v]
			fmt.Fprintf(&b, "  %-20s %3d (%d%%)\n", v, c, c*100/s.Total)
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func relative(ts string, now time.Time) string {
	t, err := note.ParseTimestamp(ts)
	if err != nil {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func preview(raw string) string {
	raw = strings.Join(strings.Fields(raw), " ")
	return truncate(raw, previewLen)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
