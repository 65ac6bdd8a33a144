package enhance

import (
	"fmt"
	"strings"

	"github.com/suykerbuyk/carenotes/internal/note"
)

// HighlightOpen and HighlightClose wrap observations the model marks as
// important.
const (
	HighlightOpen  = "<span class='bg-green-50 text-green-800 px-1 rounded'>"
	HighlightClose = "</span>"
)

// NotAvailable is the marker the model is told to use for missing information.
const NotAvailable = "N/A"

var visitContexts = map[note.VisitType]string{
	note.VisitStandard:   "This is a standard care visit. Focus on overall wellbeing, daily activities, and general care needs.",
	note.VisitMedication: "This is a medication management visit. Focus on medication adherence, side effects, and patient understanding.",
	note.VisitTherapy:    "This is a therapy visit. Focus on therapeutic activities, patient engagement, and progress towards goals.",
}

// VisitContext returns the instruction paragraph for a visit type.
func VisitContext(v note.VisitType) string {
	if c, ok := visitContexts[v]; ok {
		return c
	}
	return visitContexts[note.VisitStandard]
}

const schemaBlock = `{
  "patientName": "Extract or infer the patient name from the notes. Use N/A if not mentioned.",
  "patientStatus": "<ul><li>First observation</li><li>Second observation</li></ul>",
  "careProvided": {
    "activitiesCompleted": "<ul><li>First activity</li><li>Second activity</li></ul>",
    "patientResponse": "<ul><li>First response</li><li>Second response</li></ul>"
  },
  "personalConnectionHighlights": "<ul><li>First highlight</li><li>Second highlight</li></ul>",
  "areasOfConcern": "<ul><li>First concern</li><li>Second concern</li></ul>",
  "carePlanAdherence": "<ul><li>First adherence note</li><li>Second adherence note</li></ul>",
  "nextVisitPreparations": "<ul><li>First preparation</li><li>Second preparation</li></ul>"
}`

func buildMessages(raw string, visit note.VisitType) []chatMessage {
	return []chatMessage{
		{Role: "user", Content: buildPrompt(raw, visit)},
	}
}

func buildPrompt(raw string, visit note.VisitType) string {
	var b strings.Builder

	b.WriteString("You are a professional care worker assistant. Transform the following rough care notes into a professional, standardized care visit report.\n")
	b.WriteString("Maintain the human touch and empathy while improving language, clarity, and structure. ")
	b.WriteString("DO NOT INCLUDE ANY INFORMATION THAT WAS NOT PROVIDED IN THE RAW NOTES.\n\n")

	b.WriteString(VisitContext(visit))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Raw care worker notes: %q\n\n", raw)

	b.WriteString("IMPORTANT: Respond with ONLY a valid JSON object. Do not include any markdown formatting, explanations, or additional text.\n\n")
	b.WriteString("Format the output as a JSON object with the following structure:\n")
	b.WriteString(schemaBlock)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Visit type: %s Care Visit Report\n\n", visit.Title())

	b.WriteString("Formatting Instructions:\n")
	b.WriteString("- Use bullet point lists with <ul> and <li> tags\n")
	fmt.Fprintf(&b, "- Highlight important observations with: %simportant text%s\n", HighlightOpen, HighlightClose)
	b.WriteString("- Maintain human touch and personal elements\n")
	b.WriteString("- Ensure professional language while preserving empathy\n")
	fmt.Fprintf(&b, "- Do not include any information that was not provided in the raw notes, if not available, indicate %s\n", NotAvailable)
	b.WriteString("- Every key in the structure above must be present\n")
	b.WriteString("- Return ONLY the JSON object, no other text")

	return b.String()
}
