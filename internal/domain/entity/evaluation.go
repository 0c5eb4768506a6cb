package entity

import "strings"

// ScoreFields lists the integer rubric keys in the order they are validated.
var ScoreFields = []string{"completeness", "quality", "robustness", "consistency", "specificity"}

const (
	FieldFeedback = "feedback"

	MinScore = 1
	MaxScore = 5
)

type EvaluationRequest struct {
	Query         string `json:"query" validate:"required"`
	AgentResponse string `json:"agent_response"`
}

// CriticScore is the structured verdict of the critic. A failed evaluation is
// reported with the same shape and all scores set to zero.
type CriticScore struct {
	Completeness int    `json:"completeness" jsonschema:"Does the response cover everything the query asked for? Integer 1-5."`
	Quality      int    `json:"quality" jsonschema:"Are the returned papers relevant and correctly described? Integer 1-5."`
	Robustness   int    `json:"robustness" jsonschema:"Are the year and comparison constraints honoured without errors? Integer 1-5."`
	Consistency  int    `json:"consistency" jsonschema:"Is the output format consistent (title, authors, year, link)? Integer 1-5."`
	Specificity  int    `json:"specificity" jsonschema:"Are results specific to the topic rather than generic? Integer 1-5."`
	Feedback     string `json:"feedback" jsonschema:"Short justification of the scores. Must not be empty."`
}

func ErrorScore(feedback string) CriticScore {
	return CriticScore{Feedback: feedback}
}

// IsError reports whether the score is the all-zero failure shape.
func (s CriticScore) IsError() bool {
	return s.Completeness == 0 && s.Quality == 0 && s.Robustness == 0 &&
		s.Consistency == 0 && s.Specificity == 0
}

// Scores returns the five rubric values keyed by field name.
func (s CriticScore) Scores() map[string]int {
	return map[string]int{
		"completeness": s.Completeness,
		"quality":      s.Quality,
		"robustness":   s.Robustness,
		"consistency":  s.Consistency,
		"specificity":  s.Specificity,
	}
}

// SetScore assigns a rubric value by field name. Unknown names are ignored.
func (s *CriticScore) SetScore(field string, value int) {
	switch field {
	case "completeness":
		s.Completeness = value
	case "quality":
		s.Quality = value
	case "robustness":
		s.Robustness = value
	case "consistency":
		s.Consistency = value
	case "specificity":
		s.Specificity = value
	}
}

type ErrorKind string

const (
	ErrorKindMissingFields    ErrorKind = "MissingFields"
	ErrorKindTypeMismatch     ErrorKind = "TypeMismatch"
	ErrorKindOutOfRange       ErrorKind = "OutOfRange"
	ErrorKindMalformedJSON    ErrorKind = "MalformedJson"
	ErrorKindNoCandidateFound ErrorKind = "NoCandidateFound"
	ErrorKindEmptyResponse    ErrorKind = "EmptyResponse"
	ErrorKindCompletionFailed ErrorKind = "CompletionFailed"
)

func (k ErrorKind) String() string {
	return string(k)
}

// PropagatedFailureMarker is the phrase that lets an all-zero score from an
// earlier stage pass validation unchanged. Matching is case-insensitive.
const PropagatedFailureMarker = "parsing failed"

func IsPropagatedFailure(feedback string) bool {
	return strings.Contains(strings.ToLower(feedback), PropagatedFailureMarker)
}
