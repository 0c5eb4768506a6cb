package critic

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

type Validator struct {
	logger output.LoggerPort
}

func NewValidator(logger output.LoggerPort) *Validator {
	return &Validator{logger: logger}
}

// Validate checks a normalized candidate against the rubric schema. On success
// it returns the coerced score and a nil error. On failure it returns the
// all-zero error score together with a *ValidationError; it never panics.
//
// req and raw are used for diagnostics only and never influence the scores.
func (v *Validator) Validate(c Candidate, req entity.EvaluationRequest, raw string) (entity.CriticScore, error) {
	score, verr := parse(c, raw)
	if verr != nil {
		v.reject(verr, req, raw)
		return entity.ErrorScore(verr.Feedback()), verr
	}
	return score, nil
}

// Reject flattens a failure detected outside Validate (empty reply, transport
// error) into an error score and logs it the same way.
func (v *Validator) Reject(verr *ValidationError, req entity.EvaluationRequest, raw string) entity.CriticScore {
	v.reject(verr, req, raw)
	return entity.ErrorScore(verr.Feedback())
}

func (v *Validator) reject(verr *ValidationError, req entity.EvaluationRequest, raw string) {
	if v.logger == nil {
		return
	}
	v.logger.Warn("Critic response rejected",
		"kind", verr.Kind.String(),
		"reason", verr.Message,
		"query", req.Query,
		"agent_response", req.AgentResponse,
		"raw", raw,
	)
}

func parse(c Candidate, raw string) (entity.CriticScore, *ValidationError) {
	var score entity.CriticScore

	if !c.Found() {
		return score, NewError(entity.ErrorKindNoCandidateFound, raw, "no JSON object found in critic response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(c.JSON), &fields); err != nil {
		return score, NewError(entity.ErrorKindMalformedJSON, c.JSON, "invalid JSON: %v", err)
	}

	required := make([]string, 0, len(entity.ScoreFields)+1)
	required = append(required, entity.ScoreFields...)
	required = append(required, entity.FieldFeedback)

	var missing []string
	for _, name := range required {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return score, NewError(entity.ErrorKindMissingFields, c.JSON, "missing required fields: %s", strings.Join(missing, ", "))
	}

	for _, name := range entity.ScoreFields {
		value, ok := coerceInt(fields[name])
		if !ok {
			return score, NewError(entity.ErrorKindTypeMismatch, c.JSON,
				"field %q must be an integer, got %s", name, compact(fields[name]))
		}
		score.SetScore(name, value)
	}

	feedback, ok := coerceString(fields[entity.FieldFeedback])
	if !ok {
		return score, NewError(entity.ErrorKindTypeMismatch, c.JSON,
			"field %q must be a string, got %s", entity.FieldFeedback, compact(fields[entity.FieldFeedback]))
	}
	score.Feedback = feedback
	if strings.TrimSpace(score.Feedback) == "" {
		return score, NewError(entity.ErrorKindMissingFields, c.JSON, "missing required fields: %s", entity.FieldFeedback)
	}

	// A zero is only accepted as an upstream failure sentinel. The check
	// matches prose in feedback, so it breaks if that wording changes.
	propagated := entity.IsPropagatedFailure(score.Feedback)
	values := score.Scores()
	for _, name := range entity.ScoreFields {
		value := values[name]
		if value >= entity.MinScore && value <= entity.MaxScore {
			continue
		}
		if value == 0 && propagated {
			continue
		}
		return score, NewError(entity.ErrorKindOutOfRange, c.JSON,
			"field %q = %d is outside [%d,%d]", name, value, entity.MinScore, entity.MaxScore)
	}

	return score, nil
}

// maxExactFloat is the largest magnitude below which every integral float64
// converts to int without loss.
const maxExactFloat = 1 << 53

// coerceInt accepts JSON integers, integral floats (5.0) and strings holding a
// base-10 integer ("5").
func coerceInt(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return n, true
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, false
	}
	if n, err := num.Int64(); err == nil {
		return int(n), true
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
		return 0, false
	}
	return int(f), true
}

func coerceString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
