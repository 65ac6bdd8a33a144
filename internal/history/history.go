// Package history searches, orders and summarizes stored notes.
package history

import (
	"sort"
	"strings"
	"time"

	"github.com/suykerbuyk/carenotes/internal/note"
)

// SortKey selects the listing order.
type SortKey string

const (
	SortDate    SortKey = "date"    // most recently updated first
	SortPatient SortKey = "patient" // patient name A-Z, then newest first
)

// ParseSortKey accepts "date" (the default when empty) or "patient".
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SortDate):
		return SortDate, true
	case string(SortPatient):
		return SortPatient, true
	}
	return "", false
}

// Filter returns the notes whose patient, raw content or date contains
// query. Matching is case-insensitive. An empty query returns all notes.
func Filter(notes []note.CareNote, query string) []note.CareNote {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return notes
	}
	var out []note.CareNote
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Patient), q) ||
			strings.Contains(strings.ToLower(n.RawContent), q) ||
			strings.Contains(n.Date, q) {
			out = append(out, n)
		}
	}
	return out
}

// Sort orders notes in place.
func Sort(notes []note.CareNote, key SortKey) {
	sort.SliceStable(notes, func(i, j int) bool {
		if key == SortPatient {
			pi, pj := strings.ToLower(notes[i].Patient), strings.ToLower(notes[j].Patient)
			if pi != pj {
				return pi < pj
			}
		}
		return updated(notes[i]).After(updated(notes[j]))
	})
}

func updated(n note.CareNote) time.Time {
	t, err := note.ParseTimestamp(n.UpdatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Summary counts notes by visit type and enhancement state.
type Summary struct {
	Total       int
	Enhanced    int
	Patients    int
	ByVisitType map[note.VisitType]int
	LastUpdated time.Time
}

// Summarize computes a Summary over notes.
func Summarize(notes []note.CareNote) Summary {
	s := Summary{ByVisitType: make(map[note.VisitType]int)}
	patients := make(map[string]bool)
	for _, n := range notes {
		s.Total++
		if n.EnhancedContent != nil {
			s.Enhanced++
		}
		patients[strings.ToLower(n.Patient)] = true
		s.ByVisitType[n.VisitType]++
		if u := updated(n); u.After(s.LastUpdated) {
			s.LastUpdated = u
		}
	}
	s.Patients = len(patients)
	return s
}
