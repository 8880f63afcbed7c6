package model

import (
	"fmt"
	"strings"
)

type DocumentType string

const (
	DocumentTypeJobDescription DocumentType = "job_description"
	DocumentTypeCaseStudyBrief DocumentType = "case_study_brief"
	DocumentTypeCVRubric       DocumentType = "cv_rubric"
	DocumentTypeProjectRubric  DocumentType = "project_rubric"
	DocumentTypeCV             DocumentType = "cv"
	DocumentTypeProjectReport  DocumentType = "project_report"
)

// DocumentTypes lists every known type in a fixed order.
var DocumentTypes = []DocumentType{
	DocumentTypeJobDescription,
	DocumentTypeCaseStudyBrief,
	DocumentTypeCVRubric,
	DocumentTypeProjectRubric,
	DocumentTypeCV,
	DocumentTypeProjectReport,
}

func (t DocumentType) Valid() bool {
	for _, known := range DocumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}
