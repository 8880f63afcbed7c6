package dto

type DocumentUploadRequest struct {
	Title        string `form:"title" json:"title" validate:"max=255"`
	DocumentType string `form:"document_type" json:"document_type" validate:"required,oneof=job_description case_study_brief cv_rubric project_rubric cv project_report"`
	Replace      bool   `form:"replace" json:"replace"`
}

type ListDocumentsQuery struct {
	Page     int `query:"page" json:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" json:"page_size" validate:"omitempty,min=1,max=100"`
}
