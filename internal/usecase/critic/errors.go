package critic

import (
	"errors"
	"fmt"

	"research-agent/internal/domain/entity"
)

// maxSnippetLen bounds the offending text quoted in feedback and logs.
const maxSnippetLen = 200

type ValidationError struct {
	Kind    entity.ErrorKind
	Message string
	Snippet string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Feedback renders the error as the feedback text of an error score. It always
// contains entity.PropagatedFailureMarker so the score survives re-validation.
func (e *ValidationError) Feedback() string {
	msg := fmt.Sprintf("Evaluation parsing failed [%s]: %s", e.Kind, e.Message)
	if e.Snippet != "" {
		msg += fmt.Sprintf(" (snippet: %q)", e.Snippet)
	}
	return msg
}

// KindOf extracts the failure kind from err, or "" when err is not a
// validation failure.
func KindOf(err error) entity.ErrorKind {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return ""
}

// NewError builds a failure of the given kind quoting a snippet of text.
func NewError(kind entity.ErrorKind, text string, format string, args ...any) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Snippet: snippet(text),
	}
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) <= maxSnippetLen {
		return s
	}
	return string(r[:maxSnippetLen])
}
