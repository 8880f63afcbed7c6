package handler

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/fadilmartias/cv-evaluator/internal/apperror"
	"github.com/fadilmartias/cv-evaluator/internal/dto"
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/fadilmartias/cv-evaluator/internal/response"
	"github.com/fadilmartias/cv-evaluator/internal/store"
	"github.com/fadilmartias/cv-evaluator/internal/usecase"
	"github.com/fadilmartias/cv-evaluator/internal/util"
	"github.com/gofiber/fiber/v2"
)

type DocumentService interface {
	Ingest(ctx context.Context, req usecase.IngestRequest) (*model.Document, error)
	List(page, pageSize int) ([]model.Document, *response.Pagination, error)
}

type DocumentHandler struct {
	uc        DocumentService
	uploadDir string
}

func NewDocumentHandler(uc DocumentService, uploadDir string) *DocumentHandler {
	return &DocumentHandler{uc: uc, uploadDir: uploadDir}
}

func (h *DocumentHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/documents", h.Upload)
	app.Get("/documents", h.List)
}

func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	var req dto.DocumentUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if err := util.ValidateStruct(req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{Message: "invalid request"}, err)
	}

	savePath, filename, err := saveUpload(c, "file", filepath.Join(h.uploadDir, "documents"))
	if err != nil {
		return respondUploadError(c, err)
	}

	doc, err := h.uc.Ingest(c.UserContext(), usecase.IngestRequest{
		Title:        req.Title,
		Filename:     filename,
		DocumentType: model.DocumentType(req.DocumentType),
		Source:       store.FromFile(savePath),
		Replace:      req.Replace,
	})
	if err != nil {
		code := fiber.StatusInternalServerError
		if errors.Is(err, apperror.ErrExtraction) {
			code = fiber.StatusUnprocessableEntity
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    code,
			Message: "failed to ingest document",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success ingest document",
		Data:    doc,
	})
}

func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var q dto.ListDocumentsQuery
	if err := c.QueryParser(&q); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid query",
		}, err)
	}
	if err := util.ValidateStruct(q); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{Message: "invalid query"}, err)
	}

	docs, pagination, err := h.uc.List(q.Page, q.PageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{Message: "failed to list documents"}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get documents",
		Data:       docs,
		Pagination: pagination,
	})
}
