package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/fadilmartias/cv-evaluator/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSystemDocuments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"job_description.md", "cv_scoring_rubric.pdf", "cv_scoring_rubric.txt", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content"), 0o644))
	}

	found, missing := findSystemDocuments(dir)

	assert.Equal(t, []usecase.SystemDocument{
		{Path: filepath.Join(dir, "job_description.md"), DocumentType: model.DocumentTypeJobDescription},
		{Path: filepath.Join(dir, "cv_scoring_rubric.txt"), DocumentType: model.DocumentTypeCVRubric},
	}, found)
	assert.Equal(t, []string{"case_study_brief", "project_scoring_rubric"}, missing)
}

func TestSampleDocumentsArePresent(t *testing.T) {
	found, missing := findSystemDocuments(filepath.Join("..", "..", "sample_documents"))
	assert.Empty(t, missing)
	assert.Len(t, found, len(systemDocuments))
}
