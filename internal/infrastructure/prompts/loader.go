package prompts

import (
	_ "embed"
)

//go:embed research_assistant.txt
var ResearchAssistantPrompt string

//go:embed critic.txt
var CriticPrompt string

// FinalAnswerNudge is sent when the assistant stops without a final JSON object.
const FinalAnswerNudge = "Reply with the final result as a JSON object only, as described in your instructions."
