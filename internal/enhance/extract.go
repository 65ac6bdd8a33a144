package enhance

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/suykerbuyk/carenotes/internal/note"
)

var errNoObject = errors.New("no JSON object found in response")

// ExtractJSON isolates the JSON object in a model response. A leading code
// fence (bare or language-tagged) and a trailing fence are stripped; if what
// remains is not a single JSON object, the first balanced {...} span is taken.
func ExtractJSON(content string) (string, error) {
	s := stripFences(strings.TrimSpace(content))

	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") && json.Valid([]byte(s)) {
		return s, nil
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", errNoObject
	}
	end := matchBrace(s, start)
	if end < 0 {
		return "", fmt.Errorf("unbalanced braces starting at offset %d", start)
	}
	return s[start : end+1], nil
}

func stripFences(s string) string {
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		// Drop a language tag such as "json" up to the end of the line.
		i := 0
		for i < len(s) && isTagByte(s[i]) {
			i++
		}
		s = strings.TrimLeft(s[i:], " \t\r\n")
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimRight(s[:len(s)-3], " \t\r\n")
	}
	return s
}

func isTagByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_'
}

// matchBrace returns the index of the brace closing the one at start,
// skipping braces inside JSON strings, or -1.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Parse extracts and decodes an EnhancedNote from raw model output. Every
// key, including both careProvided keys, must be present with a string
// value; a missing or null key is a parse failure. Values are returned
// verbatim, with no escaping.
func Parse(content string) (*note.EnhancedNote, error) {
	payload, err := ExtractJSON(content)
	if err != nil {
		return nil, note.Classify(note.ErrEnhancementParseFailed, "parse enhanced note", err)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	var ej enhancedJSON
	if err := dec.Decode(&ej); err != nil {
		return nil, note.Classify(note.ErrEnhancementParseFailed, "parse enhanced note", fmt.Errorf("unmarshal enhanced note: %w", err))
	}

	if missing := ej.missing(); len(missing) > 0 {
		return nil, note.Classify(note.ErrEnhancementParseFailed, "parse enhanced note",
			fmt.Errorf("missing keys: %s", strings.Join(missing, ", ")))
	}

	return &note.EnhancedNote{
		PatientName:   *ej.PatientName,
		PatientStatus: *ej.PatientStatus,
		CareProvided: note.CareProvided{
			ActivitiesCompleted: *ej.CareProvided.ActivitiesCompleted,
			PatientResponse:     *ej.CareProvided.PatientResponse,
		},
		PersonalConnectionHighlights: *ej.PersonalConnectionHighlights,
		AreasOfConcern:               *ej.AreasOfConcern,
		CarePlanAdherence:            *ej.CarePlanAdherence,
		NextVisitPreparations:        *ej.NextVisitPreparations,
	}, nil
}

func (e enhancedJSON) missing() []string {
	var out []string
	check := func(name string, v *string) {
		if v == nil {
			out = append(out, name)
		}
	}
	check("patientName", e.PatientName)
	check("patientStatus", e.PatientStatus)
	if e.CareProvided == nil {
		out = append(out, "careProvided")
	} else {
		check("careProvided.activitiesCompleted", e.CareProvided.ActivitiesCompleted)
		check("careProvided.patientResponse", e.CareProvided.PatientResponse)
	}
	check("personalConnectionHighlights", e.PersonalConnectionHighlights)
	check("areasOfConcern", e.AreasOfConcern)
	check("carePlanAdherence", e.CarePlanAdherence)
	check("nextVisitPreparations", e.NextVisitPreparations)
	return out
}
