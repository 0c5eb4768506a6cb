package entity

type ToolName string

const (
	ToolSearchResearchPapers ToolName = "search_research_papers"
	ToolEvaluateResponse     ToolName = "evaluate_response"
)

func (t ToolName) String() string {
	return string(t)
}
