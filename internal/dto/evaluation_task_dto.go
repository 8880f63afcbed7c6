package dto

import (
	"encoding/json"
	"time"

	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/google/uuid"
)

type EvaluateRequest struct {
	JobTitle string `form:"job_title" json:"job_title" validate:"required,max=255"`
}

// EvaluationBreakdown is the per-criterion detail persisted with a task.
type EvaluationBreakdown struct {
	CV              map[string]model.RubricCriterion `json:"cv"`
	Project         map[string]model.RubricCriterion `json:"project"`
	CVFallback      bool                             `json:"cv_fallback"`
	ProjectFallback bool                             `json:"project_fallback"`
}

func NewEvaluationBreakdown(outcome *model.EvaluationOutcome) EvaluationBreakdown {
	return EvaluationBreakdown{
		CV:              outcome.CV.Criteria,
		Project:         outcome.Project.Criteria,
		CVFallback:      outcome.CV.Fallback,
		ProjectFallback: outcome.Project.Fallback,
	}
}

type EvaluationTaskDTO struct {
	ID              uuid.UUID        `json:"id"`
	JobTitle        string           `json:"job_title"`
	Status          model.TaskStatus `json:"status"`
	CvMatchRate     float64          `json:"cv_match_rate"`
	CvFeedback      string           `json:"cv_feedback"`
	ProjectScore    float64          `json:"project_score"`
	ProjectFeedback string           `json:"project_feedback"`
	OverallSummary  string           `json:"overall_summary"`
	Breakdown       json.RawMessage  `json:"breakdown,omitempty"`
	ErrorMessage    string           `json:"error_message,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func NewEvaluationTaskDTO(task *model.EvaluationTask) EvaluationTaskDTO {
	data := EvaluationTaskDTO{
		ID:           task.ID,
		JobTitle:     task.JobTitle,
		Status:       task.Status,
		ErrorMessage: task.ErrorMessage,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
	if task.Status != model.StatusCompleted {
		return data
	}
	data.CvMatchRate = task.CvMatchRate
	data.CvFeedback = task.CvFeedback
	data.ProjectScore = task.ProjectScore
	data.ProjectFeedback = task.ProjectFeedback
	data.OverallSummary = task.OverallSummary
	if json.Valid([]byte(task.Breakdown)) {
		data.Breakdown = json.RawMessage(task.Breakdown)
	}
	return data
}
