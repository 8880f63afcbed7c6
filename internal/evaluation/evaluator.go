// Package evaluation runs the CV and project report evaluation chain:
// retrieve rubric context, prompt the LLM, parse, and aggregate scores.
package evaluation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/cv-evaluator/internal/apperror"
	"github.com/fadilmartias/cv-evaluator/internal/logger"
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/fadilmartias/cv-evaluator/internal/prompt"
	"github.com/fadilmartias/cv-evaluator/internal/scoring"
	"github.com/fadilmartias/cv-evaluator/internal/service"
	"go.uber.org/zap"
)

const (
	CVFallbackFeedback      = "Unable to evaluate CV due to technical error."
	ProjectFallbackFeedback = "Unable to evaluate project report due to technical error."
	SummaryFallback         = "Unable to generate overall summary due to technical error."

	projectQuery = "case study requirements and evaluation criteria"
)

var (
	cvContextTypes      = []model.DocumentType{model.DocumentTypeJobDescription, model.DocumentTypeCVRubric}
	projectContextTypes = []model.DocumentType{model.DocumentTypeCaseStudyBrief, model.DocumentTypeProjectRubric}
)

func cvQuery(jobTitle string) string {
	return fmt.Sprintf("job requirements for %s", jobTitle)
}

type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, types []model.DocumentType, n int) string
}

type Config struct {
	Temperature float64
	MaxTokens   int
	// ContextChunks is how many chunks are retrieved per artifact.
	ContextChunks int
}

func DefaultConfig() Config {
	return Config{Temperature: 0.1, MaxTokens: 2000, ContextChunks: 5}
}

type Request struct {
	JobTitle    string
	CVText      string
	ProjectText string
}

type Evaluator struct {
	retriever ContextRetriever
	llm       service.LLMClient
	cfg       Config
	log       *zap.Logger
}

// New builds an Evaluator. A nil llm makes every LLM step take its fallback.
func New(retriever ContextRetriever, llm service.LLMClient, cfg Config, log *zap.Logger) *Evaluator {
	def := DefaultConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.ContextChunks <= 0 {
		cfg.ContextChunks = def.ContextChunks
	}
	return &Evaluator{retriever: retriever, llm: llm, cfg: cfg, log: logger.OrNop(log)}
}

// Evaluate scores both artifacts and writes an overall summary. It fails only
// when an artifact has no text. LLM and parse failures, including calls cut
// short by ctx, degrade to fallback results so the chain always completes.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*model.EvaluationOutcome, error) {
	if strings.TrimSpace(req.CVText) == "" {
		return nil, &apperror.ExtractionError{Source: "cv"}
	}
	if strings.TrimSpace(req.ProjectText) == "" {
		return nil, &apperror.ExtractionError{Source: "project_report"}
	}

	log := e.log.With(zap.String("job_title", req.JobTitle))
	started := time.Now()

	cvContext := e.retriever.Retrieve(ctx, cvQuery(req.JobTitle), cvContextTypes, e.cfg.ContextChunks)
	cv := e.evaluateCV(ctx, log, req, cvContext)

	projectContext := e.retriever.Retrieve(ctx, projectQuery, projectContextTypes, e.cfg.ContextChunks)
	project := e.evaluateProject(ctx, log, req, projectContext)

	summary := e.summarize(ctx, log, req.JobTitle, cv, project)

	log.Info("evaluation finished",
		zap.Float64("cv_match_rate", cv.Summary),
		zap.Bool("cv_fallback", cv.Fallback),
		zap.Float64("project_score", project.Summary),
		zap.Bool("project_fallback", project.Fallback),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &model.EvaluationOutcome{CV: cv, Project: project, OverallSummary: summary}, nil
}

func (e *Evaluator) evaluateCV(ctx context.Context, log *zap.Logger, req Request, ragContext string) model.AggregatedResult {
	msgs, err := prompt.CV(prompt.CVInput{JobTitle: req.JobTitle, Context: ragContext, CVText: req.CVText})
	if err != nil {
		log.Error("cv prompt failed", zap.Error(err))
		return scoring.CV.Fallback(CVFallbackFeedback)
	}
	return e.evaluateRubric(ctx, log, msgs, cvSchema, scoring.CV, CVFallbackFeedback)
}

func (e *Evaluator) evaluateProject(ctx context.Context, log *zap.Logger, req Request, ragContext string) model.AggregatedResult {
	msgs, err := prompt.Project(prompt.ProjectInput{JobTitle: req.JobTitle, Context: ragContext, ProjectText: req.ProjectText})
	if err != nil {
		log.Error("project prompt failed", zap.Error(err))
		return scoring.Project.Fallback(ProjectFallbackFeedback)
	}
	return e.evaluateRubric(ctx, log, msgs, projectSchema, scoring.Project, ProjectFallbackFeedback)
}

func (e *Evaluator) evaluateRubric(ctx context.Context, log *zap.Logger, msgs []service.Message, schema rubricSchema, rubric scoring.Rubric, fallback string) model.AggregatedResult {
	log = log.With(zap.String("rubric", rubric.Name))

	raw, err := e.call(ctx, msgs)
	if err != nil {
		log.Warn("rubric evaluation failed, using fallback",
			zap.String("error_code", apperror.Code(err)),
			zap.Error(err),
		)
		return rubric.Fallback(fallback)
	}

	criteria, feedback, err := schema.parse(raw)
	if err != nil {
		log.Warn("rubric response unparseable, using fallback",
			zap.String("error_code", apperror.Code(err)),
			zap.String("response", logger.TruncateForLog(raw, 200)),
			zap.Error(err),
		)
		return rubric.Fallback(fallback)
	}

	result := rubric.Aggregate(criteria, feedback)
	log.Debug("rubric evaluated", zap.Float64("summary", result.Summary), zap.Int("criteria", len(criteria)))
	return result
}

func (e *Evaluator) summarize(ctx context.Context, log *zap.Logger, jobTitle string, cv, project model.AggregatedResult) string {
	msgs, err := prompt.Summary(prompt.SummaryInput{
		JobTitle:        jobTitle,
		CVMatchRate:     cv.Summary,
		CVFeedback:      cv.Feedback,
		ProjectScore:    project.Summary,
		ProjectFeedback: project.Feedback,
	})
	if err != nil {
		log.Error("summary prompt failed", zap.Error(err))
		return SummaryFallback
	}

	text, err := e.call(ctx, msgs)
	if err != nil {
		log.Warn("overall summary failed, using fallback",
			zap.String("error_code", apperror.Code(err)),
			zap.Error(err),
		)
		return SummaryFallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return SummaryFallback
	}
	return text
}

func (e *Evaluator) call(ctx context.Context, msgs []service.Message) (string, error) {
	if e.llm == nil {
		return "", &apperror.LLMCallError{Provider: "none", Err: service.ErrLLMUnavailable}
	}
	return e.llm.Call(ctx, msgs, e.cfg.Temperature, e.cfg.MaxTokens)
}
