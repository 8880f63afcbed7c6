package model

import (
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Chunk is one stored segment of an ingested document. Chunks are never
// mutated; re-ingestion deletes every chunk of the document and recreates them.
type Chunk struct {
	ID           string           `gorm:"type:varchar(255);primaryKey" json:"id"`
	Text         string           `gorm:"type:text" json:"text"`
	DocumentType DocumentType     `gorm:"type:varchar(50);index" json:"document_type"`
	DocumentID   string           `gorm:"type:varchar(255);index" json:"document_id"`
	Ordinal      int              `json:"chunk_index"`
	TotalChunks  int              `json:"total_chunks"`
	Embedding    *pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt    time.Time        `json:"created_at"`
}

func (c *Chunk) TableName() string {
	return "chunks"
}

func ChunkID(documentID string, ordinal int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, ordinal)
}

// NewChunks numbers texts 0..len-1 for one document.
func NewChunks(texts []string, documentType DocumentType, documentID string) []Chunk {
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{
			ID:           ChunkID(documentID, i),
			Text:         text,
			DocumentType: documentType,
			DocumentID:   documentID,
			Ordinal:      i,
			TotalChunks:  len(texts),
		}
	}
	return chunks
}
