package repository

import (
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"gorm.io/gorm"
)

type EvaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db}
}

func (r *EvaluationRepository) CreateTask(task *model.EvaluationTask) error {
	return r.db.Create(task).Error
}

func (r *EvaluationRepository) UpdateTask(task *model.EvaluationTask) error {
	return r.db.Save(task).Error
}

func (r *EvaluationRepository) FindTaskByID(id string) (*model.EvaluationTask, error) {
	var task model.EvaluationTask
	if err := r.db.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindUnfinished returns tasks left queued or processing, oldest first.
func (r *EvaluationRepository) FindUnfinished() ([]model.EvaluationTask, error) {
	var tasks []model.EvaluationTask
	err := r.db.
		Where("status IN ?", []string{string(model.StatusQueued), string(model.StatusProcessing)}).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}
