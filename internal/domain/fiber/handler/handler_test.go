package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/fadilmartias/cv-evaluator/internal/response"
	"github.com/fadilmartias/cv-evaluator/internal/usecase"
	"github.com/fadilmartias/cv-evaluator/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Data       json.RawMessage      `json:"data"`
	Details    json.RawMessage      `json:"details"`
	Pagination *response.Pagination `json:"pagination"`
}

type upload struct {
	field, filename, content string
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, target, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

type fakeEvaluationService struct {
	submitted []model.EvaluationTask
	submitErr error
	tasks     map[string]*model.EvaluationTask
}

func (f *fakeEvaluationService) Submit(task model.EvaluationTask) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, task)
	return "11111111-1111-1111-1111-111111111111", nil
}

func (f *fakeEvaluationService) GetResult(id string) (*model.EvaluationTask, error) {
	if t, ok := f.tasks[id]; ok {
		return t, nil
	}
	return nil, errors.New("record not found")
}

func newEvaluateApp(t *testing.T, svc EvaluationService) *fiber.App {
	app := fiber.New()
	NewEvaluateHandler(svc, util.NewExtractor(nil), t.TempDir(), nil).RegisterRoutes(app)
	return app
}

func TestEvaluateSubmits(t *testing.T) {
	svc := &fakeEvaluationService{}
	app := newEvaluateApp(t, svc)

	req := multipartRequest(t, "/evaluate", map[string]string{"job_title": "Backend Engineer"},
		upload{"cv", "cv.txt", "Go developer with 5 years of experience."},
		upload{"project_report", "report.md", "# Report\nRAG pipeline."},
	)
	code, env := do(t, app, req)

	assert.Equal(t, fiber.StatusAccepted, code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"id":"11111111-1111-1111-1111-111111111111","status":"queued"}`, string(env.Data))
	require.Len(t, svc.submitted, 1)
	assert.Equal(t, "Backend Engineer", svc.submitted[0].JobTitle)
	assert.Equal(t, "Go developer with 5 years of experience.", svc.submitted[0].CV)
	assert.Contains(t, svc.submitted[0].Report, "RAG pipeline.")
}

func TestEvaluateRequiresJobTitle(t *testing.T) {
	svc := &fakeEvaluationService{}
	app := newEvaluateApp(t, svc)

	req := multipartRequest(t, "/evaluate", nil,
		upload{"cv", "cv.txt", "cv"},
		upload{"project_report", "report.txt", "report"},
	)
	code, env := do(t, app, req)

	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.False(t, env.Success)
	assert.JSONEq(t, `{"job_title":"job_title is required"}`, string(env.Details))
	assert.Empty(t, svc.submitted)
}

func TestEvaluateUploadErrors(t *testing.T) {
	tests := []struct {
		name  string
		files []upload
		want  int
	}{
		{name: "missing cv", files: []upload{{"project_report", "r.txt", "report"}}, want: fiber.StatusBadRequest},
		{name: "unsupported type", files: []upload{{"cv", "cv.docx", "cv"}, {"project_report", "r.txt", "report"}}, want: fiber.StatusUnsupportedMediaType},
		{name: "empty text", files: []upload{{"cv", "cv.txt", "   "}, {"project_report", "r.txt", "report"}}, want: fiber.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEvaluationService{}
			app := newEvaluateApp(t, svc)
			code, env := do(t, app, multipartRequest(t, "/evaluate", map[string]string{"job_title": "x"}, tt.files...))
			assert.Equal(t, tt.want, code)
			assert.False(t, env.Success)
			assert.Empty(t, svc.submitted)
		})
	}
}

func TestResult(t *testing.T) {
	id := uuid.New()
	svc := &fakeEvaluationService{tasks: map[string]*model.EvaluationTask{
		id.String(): {
			ID:          id,
			Status:      model.StatusCompleted,
			CvMatchRate: 0.82,
			Breakdown:   `{"cv":{}}`,
			CreatedAt:   time.Now(),
		},
	}}
	app := newEvaluateApp(t, svc)

	code, env := do(t, app, httptest.NewRequest(fiber.MethodGet, "/result/"+id.String(), nil))
	require.Equal(t, fiber.StatusOK, code)
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, 0.82, data["cv_match_rate"])
	assert.Equal(t, map[string]any{"cv": map[string]any{}}, data["breakdown"])

	code, env = do(t, app, httptest.NewRequest(fiber.MethodGet, "/result/"+uuid.NewString(), nil))
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.False(t, env.Success)
}

type fakeDocumentService struct {
	ingested []usecase.IngestRequest
	docs     []model.Document
}

func (f *fakeDocumentService) Ingest(ctx context.Context, req usecase.IngestRequest) (*model.Document, error) {
	f.ingested = append(f.ingested, req)
	return &model.Document{ID: uuid.New(), Title: req.Title, DocumentType: req.DocumentType, ChunkCount: 2}, nil
}

func (f *fakeDocumentService) List(page, pageSize int) ([]model.Document, *response.Pagination, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = usecase.DefaultPageSize
	}
	return f.docs, response.NewPagination(page, pageSize, int64(len(f.docs)), len(f.docs)), nil
}

func newDocumentApp(t *testing.T, svc DocumentService) *fiber.App {
	app := fiber.New()
	NewDocumentHandler(svc, t.TempDir()).RegisterRoutes(app)
	return app
}

func TestDocumentUpload(t *testing.T) {
	svc := &fakeDocumentService{}
	app := newDocumentApp(t, svc)

	req := multipartRequest(t, "/documents",
		map[string]string{"document_type": "cv_rubric", "title": "CV Rubric", "replace": "true"},
		upload{"file", "rubric.md", "Score skills from 1 to 5."},
	)
	code, env := do(t, app, req)

	require.Equal(t, fiber.StatusCreated, code)
	assert.True(t, env.Success)
	require.Len(t, svc.ingested, 1)
	got := svc.ingested[0]
	assert.Equal(t, model.DocumentTypeCVRubric, got.DocumentType)
	assert.Equal(t, "CV Rubric", got.Title)
	assert.Equal(t, "rubric.md", got.Filename)
	assert.True(t, got.Replace)
	saved, err := os.ReadFile(got.Source.Path)
	require.NoError(t, err)
	assert.Equal(t, "Score skills from 1 to 5.", string(saved))
}

func TestDocumentUploadRejectsUnknownType(t *testing.T) {
	svc := &fakeDocumentService{}
	app := newDocumentApp(t, svc)

	req := multipartRequest(t, "/documents", map[string]string{"document_type": "resume"}, upload{"file", "a.txt", "x"})
	code, env := do(t, app, req)

	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.Contains(t, string(env.Details), "document_type must be one of")
	assert.Empty(t, svc.ingested)
}

func TestDocumentList(t *testing.T) {
	svc := &fakeDocumentService{docs: []model.Document{{Title: "a"}, {Title: "b"}}}
	app := newDocumentApp(t, svc)

	code, env := do(t, app, httptest.NewRequest(fiber.MethodGet, "/documents?page=1&page_size=10", nil))
	require.Equal(t, fiber.StatusOK, code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(2), env.Pagination.TotalItems)
	assert.Equal(t, 10, env.Pagination.PageSize)

	code, _ = do(t, app, httptest.NewRequest(fiber.MethodGet, "/documents?page_size=1000", nil))
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
}
