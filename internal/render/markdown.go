package render

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/suykerbuyk/carenotes/internal/note"
	"github.com/suykerbuyk/carenotes/internal/sanitize"
)

// Section is one titled block of an enhanced report.
type Section struct {
	Title string
	Body  string // sanitized HTML fragment
}

// Sections returns the report blocks of e in display order. Every body is
// passed through the allowlist sanitizer.
func Sections(e *note.EnhancedNote) []Section {
	if e == nil {
		return nil
	}
	return []Section{
		{"Patient Status", sanitize.Fragment(e.PatientStatus)},
		{"Activities Completed", sanitize.Fragment(e.CareProvided.ActivitiesCompleted)},
		{"Patient Response", sanitize.Fragment(e.CareProvided.PatientResponse)},
		{"Personal Connection Highlights", sanitize.Fragment(e.PersonalConnectionHighlights)},
		{"Areas of Concern", sanitize.Fragment(e.AreasOfConcern)},
		{"Care Plan Adherence", sanitize.Fragment(e.CarePlanAdherence)},
		{"Next Visit Preparations", sanitize.Fragment(e.NextVisitPreparations)},
	}
}

type frontmatter struct {
	ID         string   `yaml:"id"`
	Date       string   `yaml:"date"`
	Time       string   `yaml:"time"`
	Patient    string   `yaml:"patient"`
	PatientID  string   `yaml:"patient_id"`
	CareWorker string   `yaml:"care_worker"`
	VisitType  string   `yaml:"visit_type"`
	Template   string   `yaml:"template,omitempty"`
	Enhanced   bool     `yaml:"enhanced"`
	Created    string   `yaml:"created"`
	Updated    string   `yaml:"updated"`
	Tags       []string `yaml:"tags"`
}

// CareNote renders n as a markdown document with YAML frontmatter. Enhanced
// sections are flattened to markdown lists; the original transcript follows.
func CareNote(n note.CareNote) (string, error) {
	fm := frontmatter{
		ID:         n.ID,
		Date:       n.Date,
		Time:       n.Time,
		Patient:    n.Patient,
		PatientID:  n.PatientID,
		CareWorker: n.CareWorker,
		VisitType:  string(n.VisitType),
		Template:   n.TemplateType,
		Enhanced:   n.EnhancedContent != nil,
		Created:    n.CreatedAt,
		Updated:    n.UpdatedAt,
		Tags:       []string{"care-note", string(n.VisitType)},
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")

	b.WriteString(fmt.Sprintf("# %s\n\n", Title(n)))
	b.WriteString(fmt.Sprintf("*%s %s | %s | %s*\n\n", n.Date, n.Time, n.CareWorker, n.PatientID))

	for _, s := range Sections(n.EnhancedContent) {
		body := sanitize.Flatten(s.Body, sanitize.Markdown)
		if body == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", s.Title, body))
	}

	if raw := strings.TrimSpace(n.RawContent); raw != "" {
		b.WriteString("## Original Notes\n\n")
		for _, line := range strings.Split(raw, "\n") {
			b.WriteString("> " + line + "\n")
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// Title is the heading for a note: "<patient> - <Visit> Visit".
func Title(n note.CareNote) string {
	patient := n.Patient
	if patient == "" {
		patient = note.UnknownPatient
	}
	if n.VisitType == "" {
		return patient
	}
	return fmt.Sprintf("%s - %s Visit", patient, n.VisitType.Title())
}

// NoteFilename returns the filename for an exported note: <date>-<id>.md,
// with the DD/MM/YYYY date rewritten as YYYY-MM-DD.
func NoteFilename(n note.CareNote) string {
	date := n.Date
	if parts := strings.Split(date, "/"); len(parts) == 3 {
		date = parts[2] + "-" + parts[1] + "-" + parts[0]
	}
	id := n.ID
	if len(id) > 8 {
		id = id[:8]
	}
	if date == "" {
		return id + ".md"
	}
	return date + "-" + id + ".md"
}

// Terminal renders n as plain text for console display.
func Terminal(n note.CareNote) string {
	var b strings.Builder
	b.WriteString(Title(n) + "\n")
	b.WriteString(fmt.Sprintf("%s %s  %s  %s\n", n.Date, n.Time, n.CareWorker, n.PatientID))

	for _, s := range Sections(n.EnhancedContent) {
		body := sanitize.Flatten(s.Body, sanitize.Plain)
		if body == "" {
			continue
		}
		b.WriteString("\n" + s.Title + ":\n")
		for _, line := range strings.Split(body, "\n") {
			b.WriteString("  " + line + "\n")
		}
	}

	if raw := strings.TrimSpace(n.RawContent); raw != "" {
		b.WriteString("\nOriginal notes:\n  " + raw + "\n")
	}
	return b.String()
}
