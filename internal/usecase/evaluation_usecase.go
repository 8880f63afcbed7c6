package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fadilmartias/cv-evaluator/internal/apperror"
	"github.com/fadilmartias/cv-evaluator/internal/dto"
	"github.com/fadilmartias/cv-evaluator/internal/evaluation"
	"github.com/fadilmartias/cv-evaluator/internal/logger"
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"go.uber.org/zap"
)

const (
	defaultTaskTimeout = 10 * time.Minute
	interruptedMessage = "evaluation interrupted by a restart"
)

type EvaluationRepository interface {
	CreateTask(task *model.EvaluationTask) error
	UpdateTask(task *model.EvaluationTask) error
	FindTaskByID(id string) (*model.EvaluationTask, error)
	FindUnfinished() ([]model.EvaluationTask, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, req evaluation.Request) (*model.EvaluationOutcome, error)
}

type EvaluationUsecase struct {
	evaluationRepo EvaluationRepository
	evaluator      Evaluator
	log            *zap.Logger
	timeout        time.Duration
	now            func() time.Time

	wg sync.WaitGroup
}

func NewEvaluationUsecase(evaluationRepo EvaluationRepository, evaluator Evaluator, log *zap.Logger) *EvaluationUsecase {
	return &EvaluationUsecase{
		evaluationRepo: evaluationRepo,
		evaluator:      evaluator,
		log:            logger.OrNop(log),
		timeout:        defaultTaskTimeout,
		now:            time.Now,
	}
}

// Submit stores a queued task and evaluates it in the background.
func (uc *EvaluationUsecase) Submit(req model.EvaluationTask) (string, error) {
	if strings.TrimSpace(req.CV) == "" {
		return "", &apperror.ExtractionError{Source: "cv"}
	}
	if strings.TrimSpace(req.Report) == "" {
		return "", &apperror.ExtractionError{Source: "project_report"}
	}

	now := uc.now()
	req.Status = model.StatusQueued
	req.Breakdown = "{}"
	req.CreatedAt = now
	req.UpdatedAt = now
	if err := uc.evaluationRepo.CreateTask(&req); err != nil {
		return "", err
	}
	id := req.ID.String()

	uc.dispatch(&req)
	return id, nil
}

func (uc *EvaluationUsecase) dispatch(task *model.EvaluationTask) {
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), uc.timeout)
		defer cancel()
		_ = uc.EvaluateTask(ctx, task)
	}()
}

// Wait blocks until every dispatched evaluation has finished.
func (uc *EvaluationUsecase) Wait() {
	uc.wg.Wait()
}

// EvaluateTask runs a queued task to completion, persisting each status
// change. The returned error is also recorded on the task.
func (uc *EvaluationUsecase) EvaluateTask(ctx context.Context, task *model.EvaluationTask) error {
	log := uc.log.With(zap.String("task_id", task.ID.String()))

	if err := task.Transition(model.StatusProcessing, uc.now()); err != nil {
		log.Error("cannot start evaluation", zap.Error(err))
		return err
	}
	if err := uc.evaluationRepo.UpdateTask(task); err != nil {
		log.Error("failed to mark task processing", zap.Error(err))
		return err
	}
	log.Info("evaluation started", zap.String("job_title", task.JobTitle))

	outcome, err := uc.evaluator.Evaluate(ctx, evaluation.Request{
		JobTitle:    task.JobTitle,
		CVText:      task.CV,
		ProjectText: task.Report,
	})
	if err != nil {
		return uc.fail(log, task, err)
	}

	breakdown, err := json.Marshal(dto.NewEvaluationBreakdown(outcome))
	if err != nil {
		return uc.fail(log, task, err)
	}

	task.CvMatchRate = outcome.CV.Summary
	task.CvFeedback = outcome.CV.Feedback
	task.ProjectScore = outcome.Project.Summary
	task.ProjectFeedback = outcome.Project.Feedback
	task.OverallSummary = outcome.OverallSummary
	task.Breakdown = string(breakdown)
	if err := task.Transition(model.StatusCompleted, uc.now()); err != nil {
		return err
	}
	if err := uc.evaluationRepo.UpdateTask(task); err != nil {
		log.Error("failed to save evaluation result", zap.Error(err))
		return err
	}

	log.Info("evaluation completed",
		zap.Float64("cv_match_rate", task.CvMatchRate),
		zap.Float64("project_score", task.ProjectScore),
	)
	return nil
}

func (uc *EvaluationUsecase) fail(log *zap.Logger, task *model.EvaluationTask, cause error) error {
	log.Error("evaluation failed", zap.String("error_code", apperror.Code(cause)), zap.Error(cause))

	task.ErrorMessage = cause.Error()
	if err := task.Transition(model.StatusFailed, uc.now()); err != nil {
		return errors.Join(cause, err)
	}
	if err := uc.evaluationRepo.UpdateTask(task); err != nil {
		log.Error("failed to mark task failed", zap.Error(err))
		return errors.Join(cause, err)
	}
	return cause
}

// Recover resumes tasks left unfinished by a previous process. Queued tasks
// are dispatched again; tasks caught mid-evaluation are marked failed.
func (uc *EvaluationUsecase) Recover() (resumed, failed int, err error) {
	tasks, err := uc.evaluationRepo.FindUnfinished()
	if err != nil {
		return 0, 0, err
	}
	for i := range tasks {
		task := &tasks[i]
		switch task.Status {
		case model.StatusQueued:
			uc.dispatch(task)
			resumed++
		case model.StatusProcessing:
			task.ErrorMessage = interruptedMessage
			if err := task.Transition(model.StatusFailed, uc.now()); err != nil {
				return resumed, failed, err
			}
			if err := uc.evaluationRepo.UpdateTask(task); err != nil {
				return resumed, failed, err
			}
			failed++
		}
	}
	if resumed+failed > 0 {
		uc.log.Info("recovered unfinished evaluations", zap.Int("resumed", resumed), zap.Int("failed", failed))
	}
	return resumed, failed, nil
}

func (uc *EvaluationUsecase) GetResult(id string) (*model.EvaluationTask, error) {
	return uc.evaluationRepo.FindTaskByID(id)
}
