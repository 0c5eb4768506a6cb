package entity

// Report is the outcome of one research run: the assistant's final answer and
// the critic's verdict on it.
type Report struct {
	RunID      string      `json:"run_id"`
	Query      string      `json:"query"`
	Response   string      `json:"response"`
	Iterations int         `json:"iterations"`
	Evaluation CriticScore `json:"evaluation"`
}
