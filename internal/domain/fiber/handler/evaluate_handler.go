package handler

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fadilmartias/cv-evaluator/internal/apperror"
	"github.com/fadilmartias/cv-evaluator/internal/dto"
	"github.com/fadilmartias/cv-evaluator/internal/logger"
	"github.com/fadilmartias/cv-evaluator/internal/middleware"
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/fadilmartias/cv-evaluator/internal/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type EvaluationService interface {
	Submit(task model.EvaluationTask) (string, error)
	GetResult(id string) (*model.EvaluationTask, error)
}

type EvaluateHandler struct {
	uc        EvaluationService
	extractor TextExtractor
	uploadDir string
	log       *zap.Logger
}

func NewEvaluateHandler(uc EvaluationService, extractor TextExtractor, uploadDir string, log *zap.Logger) *EvaluateHandler {
	return &EvaluateHandler{uc: uc, extractor: extractor, uploadDir: uploadDir, log: logger.OrNop(log)}
}

func (h *EvaluateHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/evaluate", middleware.RateLimiter(1, 4*time.Second), h.Evaluate)
	app.Get("/result/:id", h.Result)
}

func (h *EvaluateHandler) Evaluate(c *fiber.Ctx) error {
	var req dto.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if err := util.ValidateStruct(req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{Message: "invalid request"}, err)
	}

	cvContent, err := h.processFile(c, "cv")
	if err != nil {
		return respondUploadError(c, err)
	}
	reportContent, err := h.processFile(c, "project_report")
	if err != nil {
		return respondUploadError(c, err)
	}

	id, err := h.uc.Submit(model.EvaluationTask{
		JobTitle: req.JobTitle,
		CV:       cvContent,
		Report:   reportContent,
	})
	if err != nil {
		code := fiber.StatusInternalServerError
		if errors.Is(err, apperror.ErrExtraction) {
			code = fiber.StatusUnprocessableEntity
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    code,
			Message: "failed to submit evaluation",
		}, err)
	}

	h.log.Info("evaluation submitted", zap.String("task_id", id), zap.String("job_title", req.JobTitle))
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Success submit evaluation",
		Data:    fiber.Map{"id": id, "status": model.StatusQueued},
	})
}

// processFile saves the upload and returns its extracted text.
func (h *EvaluateHandler) processFile(c *fiber.Ctx, fieldName string) (string, error) {
	savePath, _, err := saveUpload(c, fieldName, filepath.Join(h.uploadDir, fieldName))
	if err != nil {
		return "", err
	}
	content, err := h.extractor.ExtractFile(savePath)
	if err != nil {
		return "", &uploadError{
			code:    fiber.StatusUnprocessableEntity,
			message: fmt.Sprintf("failed to extract %s text", fieldName),
			err:     err,
		}
	}
	return content, nil
}

func (h *EvaluateHandler) Result(c *fiber.Ctx) error {
	id := c.Params("id")
	task, err := h.uc.GetResult(id)
	if err != nil || task == nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "evaluation not found",
		}, nil)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get evaluation result",
		Data:    dto.NewEvaluationTaskDTO(task),
	})
}
