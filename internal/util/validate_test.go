package util

import (
	"testing"

	"github.com/fadilmartias/cv-evaluator/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(dto.DocumentUploadRequest{DocumentType: "cv_rubric"}))

	err := ValidateStruct(dto.DocumentUploadRequest{DocumentType: "resume"})
	var formErr *FormError
	require.ErrorAs(t, err, &formErr)
	assert.Equal(t,
		"document_type must be one of: job_description case_study_brief cv_rubric project_rubric cv project_report",
		formErr.Errors["document_type"],
	)

	err = ValidateStruct(dto.EvaluateRequest{})
	require.ErrorAs(t, err, &formErr)
	assert.Equal(t, map[string]string{"job_title": "job_title is required"}, formErr.Errors)

	err = ValidateStruct(dto.ListDocumentsQuery{Page: -1, PageSize: 500})
	require.ErrorAs(t, err, &formErr)
	assert.Len(t, formErr.Errors, 2)
}
