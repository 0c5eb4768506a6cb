package output

import "time"

type MetricsPort interface {
	ObserveEvaluation(outcome string)
	ObserveSearch(start time.Time, results int, failed bool)
	ObserveAssistantRun(iterations int)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) ObserveEvaluation(string)           {}
func (NopMetrics) ObserveSearch(time.Time, int, bool) {}
func (NopMetrics) ObserveAssistantRun(int)            {}
