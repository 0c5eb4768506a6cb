package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

var _ output.ToolPort = (*SearchTool)(nil)

var validate = validator.New()

const (
	msgConnectFailed = "Failed to connect to arXiv API."
	msgParseFailed   = "Failed to parse arXiv API response."
	msgUnexpected    = "An unexpected error occurred during search."
)

type SearchTool struct {
	search output.PaperSearchPort
	logger output.LoggerPort
}

func NewSearchTool(search output.PaperSearchPort, logger output.LoggerPort) *SearchTool {
	return &SearchTool{search: search, logger: logger}
}

func (t *SearchTool) Name() entity.ToolName { return entity.ToolSearchResearchPapers }
func (t *SearchTool) Description() string  { return "Search academic papers on arXiv" }
func (t *SearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"topic": map[string]interface{}{
				"type":        "string",
				"description": "Research topic",
			},
			"year": map[string]interface{}{
				"type":        "integer",
				"description": "Publication year reference",
			},
			"comparison": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"after", "before", "in"},
				"description": "Use 'after' for papers published after the year, 'before' for before, 'in' for exact year",
			},
			"min_citations": map[string]interface{}{
				"type":        "integer",
				"description": "Accepted for compatibility; arXiv has no citation data so results are not filtered by it",
			},
		},
		"required": []string{"topic", "year", "comparison"},
	}
}

// Execute runs the search and always answers with a JSON array: the papers
// found, or a single error object when the backend failed. Only malformed
// arguments produce an error.
func (t *SearchTool) Execute(ctx context.Context, args string) (string, error) {
	query, err := ParseSearchArgs(args)
	if err != nil {
		return "", err
	}
	return t.Run(ctx, query), nil
}

// Run executes an already validated query.
func (t *SearchTool) Run(ctx context.Context, query entity.SearchQuery) string {
	papers, err := t.search.Search(ctx, query)
	if err != nil {
		t.logger.Warn("Paper search failed",
			"topic", query.Topic,
			"year", query.Year,
			"comparison", string(query.Comparison),
			"error", err,
		)
		return encodeSearchError(err)
	}
	if papers == nil {
		papers = []entity.Paper{}
	}

	data, err := json.Marshal(papers)
	if err != nil {
		return encodeSearchError(err)
	}

	t.logger.Info("Paper search completed", "topic", query.Topic, "results", len(papers))
	return string(data)
}

// ParseSearchArgs reads tool-call arguments. Numbers sent as strings are
// accepted since models produce both.
func ParseSearchArgs(args string) (entity.SearchQuery, error) {
	if !gjson.Valid(args) {
		return entity.SearchQuery{}, fmt.Errorf("invalid arguments: not a JSON object")
	}
	parsed := gjson.Parse(args)
	if !parsed.IsObject() {
		return entity.SearchQuery{}, fmt.Errorf("invalid arguments: not a JSON object")
	}

	comparison, err := entity.ParseComparison(parsed.Get("comparison").String())
	if err != nil {
		return entity.SearchQuery{}, fmt.Errorf("invalid arguments: %w", err)
	}

	query := entity.SearchQuery{
		Topic:        parsed.Get("topic").String(),
		Year:         int(parsed.Get("year").Int()),
		Comparison:   comparison,
		MinCitations: int(parsed.Get("min_citations").Int()),
	}
	if err := validate.Struct(query); err != nil {
		return entity.SearchQuery{}, fmt.Errorf("invalid arguments: %w", err)
	}
	return query, nil
}

// IsSearchError reports whether a search result is the error-object form.
func IsSearchError(result string) bool {
	return gjson.Get(result, "0.error").Exists()
}

func encodeSearchError(err error) string {
	msg := msgUnexpected
	switch {
	case errors.Is(err, entity.ErrSearchUnavailable):
		msg = msgConnectFailed
	case errors.Is(err, entity.ErrSearchResponse):
		msg = msgParseFailed
	}

	data, _ := json.Marshal([]entity.SearchError{{Error: msg, Details: err.Error()}})
	return string(data)
}
