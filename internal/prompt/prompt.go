// Package prompt renders the evaluation prompts sent to the LLM.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/fadilmartias/cv-evaluator/internal/service"
)

const (
	cvSystem      = "You are an expert HR professional. Always respond with valid JSON only."
	projectSystem = "You are an expert technical reviewer. Always respond with valid JSON only."
	summarySystem = "You are an expert HR professional providing candidate assessments."
)

var (
	//go:embed cv.md
	cvRaw string
	//go:embed project.md
	projectRaw string
	//go:embed summary.md
	summaryRaw string
)

var (
	cvTemplate      = template.Must(template.New("cv").Option("missingkey=error").Parse(cvRaw))
	projectTemplate = template.Must(template.New("project").Option("missingkey=error").Parse(projectRaw))
	summaryTemplate = template.Must(template.New("summary").Option("missingkey=error").Parse(summaryRaw))
)

type CVInput struct {
	JobTitle string
	Context  string
	CVText   string
}

type ProjectInput struct {
	JobTitle    string
	Context     string
	ProjectText string
}

type SummaryInput struct {
	JobTitle        string
	CVMatchRate     float64
	CVFeedback      string
	ProjectScore    float64
	ProjectFeedback string
}

func CV(in CVInput) ([]service.Message, error) {
	return render(cvTemplate, cvSystem, in)
}

func Project(in ProjectInput) ([]service.Message, error) {
	return render(projectTemplate, projectSystem, in)
}

func Summary(in SummaryInput) ([]service.Message, error) {
	return render(summaryTemplate, summarySystem, in)
}

func render(t *template.Template, system string, data any) ([]service.Message, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return []service.Message{
		{Role: service.RoleSystem, Content: system},
		{Role: service.RoleUser, Content: buf.String()},
	}, nil
}
