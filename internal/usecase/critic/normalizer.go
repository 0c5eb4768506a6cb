// Package critic turns free-form critic replies into validated scores.
//
// The pipeline is Normalize → Validate. Normalize isolates the most plausible
// JSON object in the reply, Validate enforces the rubric schema on it. Neither
// step panics; every failure surfaces as a *ValidationError.
package critic

import "strings"

const (
	fence     = "```"
	jsonFence = "```json"
)

// Candidate is the JSON object text extracted from a critic reply.
type Candidate struct {
	JSON  string
	found bool
}

// NoCandidate is returned by Normalize when the text holds no {...} span.
var NoCandidate = Candidate{}

func (c Candidate) Found() bool {
	return c.found
}

// StripFences removes one leading ```json (or ```) marker and one trailing
// ``` marker, then trims surrounding whitespace.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case len(s) >= len(jsonFence) && strings.EqualFold(s[:len(jsonFence)], jsonFence):
		s = s[len(jsonFence):]
	case strings.HasPrefix(s, fence):
		s = s[len(fence):]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// Normalize returns the inclusive substring between the first '{' and the last
// '}' of the fence-stripped text.
func Normalize(raw string) Candidate {
	s := StripFences(raw)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || start >= end {
		return NoCandidate
	}

	return Candidate{JSON: s[start : end+1], found: true}
}
