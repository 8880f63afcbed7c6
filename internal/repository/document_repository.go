package repository

import (
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db}
}

// SaveDocument inserts the document or overwrites the row with the same id.
func (r *DocumentRepository) SaveDocument(doc *model.Document) error {
	return r.db.Save(doc).Error
}

func (r *DocumentRepository) FindDocumentByID(id string) (*model.Document, error) {
	var d model.Document
	if err := r.db.First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDocuments returns one page (1-based) of documents, newest first, and
// the total count.
func (r *DocumentRepository) ListDocuments(page, pageSize int) ([]model.Document, int64, error) {
	var (
		docs  []model.Document
		total int64
	)
	if err := r.db.Model(&model.Document{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&docs).Error
	return docs, total, err
}
