package model

// RubricCriterion is one scored line of an LLM rubric evaluation.
type RubricCriterion struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// AggregatedResult is the scored outcome for one artifact. Summary is the CV
// match rate (0-1) or the project score (1-5) depending on the artifact.
type AggregatedResult struct {
	Criteria map[string]RubricCriterion `json:"criteria"`
	Summary  float64                    `json:"summary"`
	Feedback string                     `json:"feedback"`
	Fallback bool                       `json:"fallback"`
}

type EvaluationOutcome struct {
	CV             AggregatedResult `json:"cv_result"`
	Project        AggregatedResult `json:"project_result"`
	OverallSummary string           `json:"overall_summary"`
}
