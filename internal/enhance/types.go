package enhance

// API request/response types for OpenAI-compatible chat completions.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// enhancedJSON is the expected JSON structure from the model. Pointer fields
// let the parser tell a missing key from an empty value.
type enhancedJSON struct {
	PatientName                  *string           `json:"patientName"`
	PatientStatus                *string           `json:"patientStatus"`
	CareProvided                 *careProvidedJSON `json:"careProvided"`
	PersonalConnectionHighlights *string           `json:"personalConnectionHighlights"`
	AreasOfConcern               *string           `json:"areasOfConcern"`
	CarePlanAdherence            *string           `json:"carePlanAdherence"`
	NextVisitPreparations        *string           `json:"nextVisitPreparations"`
}

type careProvidedJSON struct {
	ActivitiesCompleted *string `json:"activitiesCompleted"`
	PatientResponse     *string `json:"patientResponse"`
}
