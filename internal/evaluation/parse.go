package evaluation

import (
	"errors"
	"strings"

	"github.com/fadilmartias/cv-evaluator/internal/apperror"
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/fadilmartias/cv-evaluator/internal/scoring"
	"github.com/tidwall/gjson"
)

var (
	errInvalidJSON = errors.New("response is not valid JSON")
	errNotObject   = errors.New("response is not a JSON object")
)

// rubricSchema names the JSON keys the LLM answers with for one rubric.
type rubricSchema struct {
	op          string
	weights     scoring.WeightTable
	feedbackKey string
	// aliases maps a criterion to an alternative key some models emit.
	aliases map[string]string
}

var (
	cvSchema = rubricSchema{
		op:          "cv",
		weights:     scoring.CVWeights,
		feedbackKey: "cv_feedback",
	}
	projectSchema = rubricSchema{
		op:          "project",
		weights:     scoring.ProjectWeights,
		feedbackKey: "project_feedback",
		aliases:     map[string]string{"creativity": "creativity_or_bonus"},
	}
)

// parse reads per-criterion scores and the feedback text. Criteria the model
// left out are omitted and later scored at the minimum; composite values in
// the response are ignored.
func (s rubricSchema) parse(raw string) (map[string]model.RubricCriterion, string, error) {
	text := cleanJSONBlock(raw)
	if !gjson.Valid(text) {
		return nil, "", &apperror.ParseError{Op: s.op, Err: errInvalidJSON}
	}
	root := gjson.Parse(text)
	if !root.IsObject() {
		return nil, "", &apperror.ParseError{Op: s.op, Err: errNotObject}
	}

	criteria := make(map[string]model.RubricCriterion, len(s.weights))
	for _, w := range s.weights {
		res := root.Get(gjson.Escape(w.Name))
		if !res.Exists() {
			if alias, ok := s.aliases[w.Name]; ok {
				res = root.Get(gjson.Escape(alias))
			}
		}
		if !res.Exists() {
			continue
		}
		criteria[w.Name] = criterion(w.Name, res)
	}
	return criteria, strings.TrimSpace(root.Get(s.feedbackKey).String()), nil
}

// criterion accepts {"score": n, "reasoning": "..."} or a bare number.
func criterion(name string, res gjson.Result) model.RubricCriterion {
	c := model.RubricCriterion{Name: name}
	score := res
	if res.IsObject() {
		score = res.Get("score")
		c.Reasoning = res.Get("reasoning").String()
	}
	switch score.Type {
	case gjson.Number, gjson.String:
		c.Score = score.Float()
	}
	return c
}

// cleanJSONBlock strips markdown code fences and any prose around the outer
// JSON object.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	if !strings.HasPrefix(text, "{") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start >= 0 && end > start {
			text = text[start : end+1]
		}
	}
	return text
}
