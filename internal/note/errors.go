package note

import (
	"errors"
	"fmt"
)

var (
	ErrTranscriptionFailed      = errors.New("transcription failed")
	ErrEmptyTranscription       = errors.New("transcription returned no text")
	ErrEnhancementRequestFailed = errors.New("enhancement request failed")
	ErrEnhancementParseFailed   = errors.New("enhancement response could not be parsed")
	ErrEnhancementInProgress    = errors.New("an enhancement is already in progress")
	ErrValidation               = errors.New("validation error")
)

// Error is a classified failure. Kind is one of the sentinel errors above and
// Err carries the underlying cause for diagnostics.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error's kind, so errors.Is(err, ErrValidation) works
// regardless of the wrapped cause.
func (e *Error) Is(target error) bool { return e.Kind == target }

// Classify wraps cause as an *Error of the given kind.
func Classify(kind error, op string, cause error) error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Validation reports a local precondition violation.
func Validation(op string, cause error) error {
	return Classify(ErrValidation, op, cause)
}

// KindOf returns the taxonomy sentinel carried by err, or nil if err was
// never classified.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

// KindName is a stable short name for the error's kind, used in machine
// readable output.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrTranscriptionFailed:
		return "transcription_failed"
	case ErrEmptyTranscription:
		return "empty_transcription"
	case ErrEnhancementRequestFailed:
		return "enhancement_request_failed"
	case ErrEnhancementParseFailed:
		return "enhancement_parse_failed"
	case ErrEnhancementInProgress:
		return "enhancement_in_progress"
	case ErrValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Suggestion returns the next action to show the user for err.
func Suggestion(err error) string {
	switch KindOf(err) {
	case ErrTranscriptionFailed:
		return "Try recording again, speaking clearly, or check your connection."
	case ErrEmptyTranscription:
		return "No speech was recognized. Try recording again."
	case ErrEnhancementRequestFailed:
		return "Check your API key configuration and connectivity, then try again."
	case ErrEnhancementParseFailed:
		return "The model response was not in the expected format. Please try again."
	case ErrEnhancementInProgress:
		return "Wait for the current enhancement to finish."
	case ErrValidation:
		return "Add some note content first."
	default:
		return ""
	}
}
