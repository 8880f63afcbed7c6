// Package scoring turns per-criterion rubric scores into the CV match rate and
// the project score. The composite an LLM reports is never trusted; both
// summaries are recomputed here from the component scores.
package scoring

import (
	"math"

	"github.com/fadilmartias/cv-evaluator/internal/model"
)

const (
	MinScore     = 1.0
	MaxScore     = 5.0
	DefaultScore = MinScore
)

// Weight is one named criterion of a rubric.
type Weight struct {
	Name   string
	Weight float64
}

// WeightTable is an ordered rubric; order drives prompt rendering and logs.
type WeightTable []Weight

var CVWeights = WeightTable{
	{Name: "technical_skills_match", Weight: 0.40},
	{Name: "experience_level", Weight: 0.25},
	{Name: "relevant_achievements", Weight: 0.20},
	{Name: "cultural_fit", Weight: 0.15},
}

var ProjectWeights = WeightTable{
	{Name: "correctness", Weight: 0.30},
	{Name: "code_quality", Weight: 0.25},
	{Name: "resilience", Weight: 0.20},
	{Name: "documentation", Weight: 0.15},
	{Name: "creativity", Weight: 0.10},
}

func (t WeightTable) Sum() float64 {
	total := 0.0
	for _, w := range t {
		total += w.Weight
	}
	return total
}

func (t WeightTable) Names() []string {
	names := make([]string, len(t))
	for i, w := range t {
		names[i] = w.Name
	}
	return names
}

// NormalizeScore returns score when it is a real number in [1,5], otherwise 1.
func NormalizeScore(score float64) float64 {
	if math.IsNaN(score) || score < MinScore || score > MaxScore {
		return DefaultScore
	}
	return score
}

// Weighted returns Σ score·weight over the table. Missing or invalid scores
// count as the default score. criteria is only read and may be nil.
func (t WeightTable) Weighted(criteria map[string]model.RubricCriterion) float64 {
	total := 0.0
	for _, w := range t {
		score := DefaultScore
		if c, ok := criteria[w.Name]; ok {
			score = NormalizeScore(c.Score)
		}
		total += score * w.Weight
	}
	return total
}

// Normalize returns a copy of criteria holding every criterion of the table
// with a valid score, missing ones at the default score.
func (t WeightTable) Normalize(criteria map[string]model.RubricCriterion) map[string]model.RubricCriterion {
	out := clone(criteria)
	for _, w := range t {
		c, ok := out[w.Name]
		if !ok {
			c = model.RubricCriterion{Score: DefaultScore}
		}
		c.Name = w.Name
		c.Score = NormalizeScore(c.Score)
		out[w.Name] = c
	}
	return out
}

// Rubric pairs a weight table with the divisor that maps the weighted score
// onto the artifact's summary scale.
type Rubric struct {
	Name    string
	Weights WeightTable
	Divisor float64
}

var (
	// CV summaries are match rates in 0.2-1.0.
	CV = Rubric{Name: "cv", Weights: CVWeights, Divisor: MaxScore}
	// Project summaries stay on the native 1-5 scale.
	Project = Rubric{Name: "project", Weights: ProjectWeights, Divisor: 1}
)

func (r Rubric) summary(criteria map[string]model.RubricCriterion) float64 {
	return r.Weights.Weighted(criteria) / r.Divisor
}

// Aggregate builds the result from a normalized copy of criteria; the input
// is untouched.
func (r Rubric) Aggregate(criteria map[string]model.RubricCriterion, feedback string) model.AggregatedResult {
	c := r.Weights.Normalize(criteria)
	return model.AggregatedResult{Criteria: c, Summary: r.summary(c), Feedback: feedback}
}

// Fallback is the conservative result used when an evaluation cannot be
// produced: every criterion at the minimum score.
func (r Rubric) Fallback(feedback string) model.AggregatedResult {
	criteria := make(map[string]model.RubricCriterion, len(r.Weights))
	for _, w := range r.Weights {
		criteria[w.Name] = model.RubricCriterion{Name: w.Name, Score: DefaultScore, Reasoning: "Evaluation failed"}
	}
	return model.AggregatedResult{Criteria: criteria, Summary: r.summary(criteria), Feedback: feedback, Fallback: true}
}

// CVMatchRate is Σ(score·weight)/5 over the CV rubric.
func CVMatchRate(criteria map[string]model.RubricCriterion) float64 {
	return CV.summary(criteria)
}

// ProjectScore is Σ(score·weight) over the project rubric.
func ProjectScore(criteria map[string]model.RubricCriterion) float64 {
	return Project.summary(criteria)
}

func clone(criteria map[string]model.RubricCriterion) map[string]model.RubricCriterion {
	c := make(map[string]model.RubricCriterion, len(criteria))
	for k, v := range criteria {
		c[k] = v
	}
	return c
}
