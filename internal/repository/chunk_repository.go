package repository

import (
	"context"

	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChunkRepository stores chunk embeddings in a pgvector column.
type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db}
}

// Ensure enables the vector extension and migrates the chunk table. It fails
// when the database has no pgvector support.
func (r *ChunkRepository) Ensure(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return err
	}
	return db.AutoMigrate(&model.Chunk{})
}

// Insert adds chunks; an existing chunk id is left untouched.
func (r *ChunkRepository) Insert(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&chunks).Error
}

// Search orders by cosine distance to embedding.
func (r *ChunkRepository) Search(ctx context.Context, embedding pgvector.Vector, types []model.DocumentType, limit int) ([]model.Chunk, error) {
	var chunks []model.Chunk

	q := r.db.WithContext(ctx).Where("embedding IS NOT NULL")
	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		q = q.Where("document_type IN ?", names)
	}
	err := q.
		Clauses(clause.OrderBy{Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{embedding}}}).
		Limit(limit).
		Find(&chunks).Error
	return chunks, err
}

func (r *ChunkRepository) DeleteByDocumentID(ctx context.Context, documentID string) error {
	return r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&model.Chunk{}).Error
}
