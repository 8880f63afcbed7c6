package scoring

import (
	"math"
	"testing"

	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/stretchr/testify/assert"
)

func criteria(scores map[string]float64) map[string]model.RubricCriterion {
	c := make(map[string]model.RubricCriterion, len(scores))
	for name, s := range scores {
		c[name] = model.RubricCriterion{Name: name, Score: s, Reasoning: "r"}
	}
	return c
}

func uniform(table WeightTable, score float64) map[string]model.RubricCriterion {
	scores := make(map[string]float64, len(table))
	for _, w := range table {
		scores[w.Name] = score
	}
	return criteria(scores)
}

func TestWeightTablesSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, CVWeights.Sum(), 0.001)
	assert.InDelta(t, 1.0, ProjectWeights.Sum(), 0.001)
}

func TestCVMatchRate(t *testing.T) {
	tests := []struct {
		name   string
		scores map[string]model.RubricCriterion
		want   float64
	}{
		{
			name: "mixed",
			scores: criteria(map[string]float64{
				"technical_skills_match": 1,
				"experience_level":       2,
				"relevant_achievements":  1,
				"cultural_fit":           2,
			}),
			want: 0.28,
		},
		{name: "all five", scores: uniform(CVWeights, 5), want: 1.0},
		{name: "all one", scores: uniform(CVWeights, 1), want: 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CVMatchRate(tt.scores), 0.001)
		})
	}
}

func TestCVMatchRateFormulasAreEquivalent(t *testing.T) {
	for _, s := range []float64{1, 1.5, 2, 3.3, 4, 5} {
		weighted := CVWeights.Weighted(uniform(CVWeights, s))
		assert.InDelta(t, weighted/5, weighted*0.2, 1e-12)
		assert.InDelta(t, weighted*0.2, CVMatchRate(uniform(CVWeights, s)), 1e-12)
	}
}

func TestProjectScore(t *testing.T) {
	got := ProjectScore(criteria(map[string]float64{
		"correctness":   4,
		"code_quality":  3,
		"resilience":    4,
		"documentation": 3,
		"creativity":    2,
	}))
	assert.InDelta(t, 3.4, got, 0.001)

	assert.InDelta(t, 5.0, ProjectScore(uniform(ProjectWeights, 5)), 0.001)
	assert.InDelta(t, 1.0, ProjectScore(uniform(ProjectWeights, 1)), 0.001)
}

func TestInvalidScoresDefaultToOne(t *testing.T) {
	c := criteria(map[string]float64{
		"technical_skills_match": 9,
		"experience_level":       0,
		"relevant_achievements":  math.NaN(),
		// cultural_fit missing
	})

	assert.InDelta(t, 0.2, CVMatchRate(c), 0.001)
	assert.Equal(t, 9.0, c["technical_skills_match"].Score)
	assert.NotContains(t, c, "cultural_fit")

	res := CV.Aggregate(c, "")
	assert.Equal(t, 1.0, res.Criteria["technical_skills_match"].Score)
	assert.Equal(t, "cultural_fit", res.Criteria["cultural_fit"].Name)
}

func TestNilCriteriaScoreMinimum(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.InDelta(t, 0.2, CVMatchRate(nil), 1e-9)
		assert.InDelta(t, 1.0, ProjectScore(nil), 1e-9)
	})

	res := Project.Aggregate(nil, "empty")
	assert.Len(t, res.Criteria, len(ProjectWeights))
	assert.InDelta(t, 1.0, res.Summary, 1e-9)
}

func TestNormalizeScore(t *testing.T) {
	assert.Equal(t, 3.5, NormalizeScore(3.5))
	assert.Equal(t, 1.0, NormalizeScore(5.01))
	assert.Equal(t, 1.0, NormalizeScore(-2))
	assert.Equal(t, 1.0, NormalizeScore(math.Inf(1)))
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	in := criteria(map[string]float64{"correctness": 7})
	res := Project.Aggregate(in, "fine")

	assert.Equal(t, 7.0, in["correctness"].Score)
	assert.Len(t, in, 1)
	assert.Len(t, res.Criteria, len(ProjectWeights))
	assert.Equal(t, "fine", res.Feedback)
	assert.False(t, res.Fallback)
	assert.InDelta(t, 1.0, res.Summary, 0.001)
}

func TestFallback(t *testing.T) {
	cv := CV.Fallback("cv failed")
	assert.True(t, cv.Fallback)
	assert.InDelta(t, 0.2, cv.Summary, 0.001)
	assert.Len(t, cv.Criteria, 4)

	project := Project.Fallback("project failed")
	assert.InDelta(t, 1.0, project.Summary, 0.001)
	for _, c := range project.Criteria {
		assert.Equal(t, 1.0, c.Score)
	}
}
