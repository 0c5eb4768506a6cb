package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"research-agent/internal/domain/entity"

	"github.com/google/jsonschema-go/jsonschema"
)

type CriticPromptData struct {
	Schema   string
	MinScore int
	MaxScore int
}

// CriticSchema returns the JSON schema of entity.CriticScore with the score
// bounds filled in.
func CriticSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[entity.CriticScore](nil)
	if err != nil {
		return nil, fmt.Errorf("derive critic schema: %w", err)
	}

	lo, hi := float64(entity.MinScore), float64(entity.MaxScore)
	for _, field := range entity.ScoreFields {
		prop, ok := schema.Properties[field]
		if !ok {
			return nil, fmt.Errorf("critic schema has no property %q", field)
		}
		prop.Minimum = &lo
		prop.Maximum = &hi
	}

	required := make([]string, 0, len(entity.ScoreFields)+1)
	required = append(required, entity.ScoreFields...)
	schema.Required = append(required, entity.FieldFeedback)
	return schema, nil
}

// GenerateCriticPrompt renders the critic system prompt from baseTemplate.
func GenerateCriticPrompt(baseTemplate string) (string, error) {
	schema, err := CriticSchema()
	if err != nil {
		return "", err
	}

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal critic schema: %w", err)
	}

	data := CriticPromptData{
		Schema:   string(schemaJSON),
		MinScore: entity.MinScore,
		MaxScore: entity.MaxScore,
	}

	tmpl, err := template.New("critic").Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// CriticUserPrompt embeds the query and the response under review.
func CriticUserPrompt(req entity.EvaluationRequest) string {
	return fmt.Sprintf("Query: %s\nResponse: %s\nEvaluate and return JSON score:", req.Query, req.AgentResponse)
}
