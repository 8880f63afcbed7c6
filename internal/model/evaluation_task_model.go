package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EvaluationTask struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	JobTitle        string     `gorm:"type:varchar(255)" json:"job_title"`
	CV              string     `gorm:"type:text" json:"cv"`
	Report          string     `gorm:"type:text" json:"report"`
	Status          TaskStatus `gorm:"type:varchar(50)" json:"status"`
	CvMatchRate     float64    `gorm:"type:float" json:"cv_match_rate"`
	CvFeedback      string     `gorm:"type:text" json:"cv_feedback"`
	ProjectScore    float64    `gorm:"type:float" json:"project_score"`
	ProjectFeedback string     `gorm:"type:text" json:"project_feedback"`
	OverallSummary  string     `gorm:"type:text" json:"overall_summary"`
	Breakdown       string     `gorm:"type:jsonb" json:"breakdown"`
	ErrorMessage    string     `gorm:"type:text" json:"error_message"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Transition moves the task to next, stamping start/completion times.
func (t *EvaluationTask) Transition(next TaskStatus, now time.Time) error {
	if !t.Status.CanTransition(next) {
		return fmt.Errorf("invalid status transition %s -> %s", t.Status, next)
	}
	t.Status = next
	t.UpdatedAt = now
	switch {
	case next == StatusProcessing:
		t.StartedAt = &now
	case next.Terminal():
		t.CompletedAt = &now
	}
	return nil
}
