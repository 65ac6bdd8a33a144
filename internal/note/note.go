package note

import (
	"fmt"
	"strings"
	"time"
)

// VisitType tags the context used to bias enhancement instructions.
type VisitType string

const (
	VisitStandard   VisitType = "standard"
	VisitMedication VisitType = "medication"
	VisitTherapy    VisitType = "therapy"
)

// VisitTypes lists the closed set of visit categories.
var VisitTypes = []VisitType{VisitStandard, VisitMedication, VisitTherapy}

// ParseVisitType normalizes s and checks it against the closed set.
// An empty string yields VisitStandard.
func ParseVisitType(s string) (VisitType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return VisitStandard, nil
	}
	for _, v := range VisitTypes {
		if string(v) == s {
			return v, nil
		}
	}
	return "", Validation("parse visit type", fmt.Errorf("unknown visit type %q (want standard, medication or therapy)", s))
}

// Valid reports whether v is one of the known categories.
func (v VisitType) Valid() bool {
	for _, t := range VisitTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Title returns "Medication" for VisitMedication etc.
func (v VisitType) Title() string {
	if v == "" {
		return ""
	}
	s := string(v)
	return strings.ToUpper(s[:1]) + s[1:]
}

// CareProvided is the nested care section of an enhanced note.
type CareProvided struct {
	ActivitiesCompleted string `json:"activitiesCompleted"`
	PatientResponse     string `json:"patientResponse"`
}

// EnhancedNote is the structured report produced by the enhancement model.
// String fields hold HTML list fragments exactly as the model returned them.
type EnhancedNote struct {
	PatientName                  string       `json:"patientName"`
	PatientStatus                string       `json:"patientStatus"`
	CareProvided                 CareProvided `json:"careProvided"`
	PersonalConnectionHighlights string       `json:"personalConnectionHighlights"`
	AreasOfConcern               string       `json:"areasOfConcern"`
	CarePlanAdherence            string       `json:"carePlanAdherence"`
	NextVisitPreparations        string       `json:"nextVisitPreparations"`
}

// CareNote is a persisted visit record.
type CareNote struct {
	ID              string        `json:"id"`
	Date            string        `json:"date"`
	Time            string        `json:"time"`
	CareWorker      string        `json:"careWorker"`
	Patient         string        `json:"patient"`
	PatientID       string        `json:"patientId"`
	VisitType       VisitType     `json:"visitType"`
	RawContent      string        `json:"rawContent"`
	EnhancedContent *EnhancedNote `json:"enhancedContent,omitempty"`
	TemplateType    string        `json:"templateType"`
	CreatedAt       string        `json:"createdAt"` // RFC 3339, UTC
	UpdatedAt       string        `json:"updatedAt"` // RFC 3339, UTC
}

const (
	DefaultCareWorker = "Current User"
	UnknownPatient    = "Unknown Patient"
)

// PatientIDFor derives the display patient identifier from a note id.
func PatientIDFor(id string) string {
	tail := id
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return "PAT-" + strings.ToUpper(tail)
}

// TimestampLayout is the ISO 8601 form used for CreatedAt and UpdatedAt,
// millisecond precision in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t for CreatedAt/UpdatedAt.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a CreatedAt/UpdatedAt value. Any RFC 3339 string is
// accepted.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
