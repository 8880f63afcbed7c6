package model

import (
	"time"

	"github.com/google/uuid"
)

// Document records a source file that was ingested into the document store.
type Document struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title        string       `json:"title"`
	Filename     string       `json:"filename"`
	DocumentType DocumentType `gorm:"type:varchar(50);index" json:"document_type"`
	ChunkCount   int          `json:"chunk_count"`
	Backend      string       `gorm:"type:varchar(20)" json:"backend"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (d *Document) TableName() string {
	return "documents"
}
