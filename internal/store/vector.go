package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/pgvector/pgvector-go"
)

const BackendVector = "vector"

var ErrNoEmbedding = errors.New("embedding unavailable")

// ChunkIndex is a similarity index over embedded chunks.
type ChunkIndex interface {
	Ensure(ctx context.Context) error
	Insert(ctx context.Context, chunks []model.Chunk) error
	Search(ctx context.Context, embedding pgvector.Vector, types []model.DocumentType, limit int) ([]model.Chunk, error)
	DeleteByDocumentID(ctx context.Context, documentID string) error
}

// Embedder returns nil when no embedding could be produced.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

type VectorBackend struct {
	index    ChunkIndex
	embedder Embedder
}

func NewVectorBackend(index ChunkIndex, embedder Embedder) *VectorBackend {
	return &VectorBackend{index: index, embedder: embedder}
}

func (b *VectorBackend) Name() string { return BackendVector }

func (b *VectorBackend) Add(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	embedded := make([]model.Chunk, len(chunks))
	for i, c := range chunks {
		vec, err := b.embed(ctx, c.Text)
		if err != nil {
			return fmt.Errorf("chunk %s: %w", c.ID, err)
		}
		c.Embedding = &vec
		embedded[i] = c
	}
	return b.index.Insert(ctx, embedded)
}

func (b *VectorBackend) Search(ctx context.Context, query string, types []model.DocumentType, limit int) ([]model.Chunk, error) {
	vec, err := b.embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return b.index.Search(ctx, vec, types, limit)
}

func (b *VectorBackend) DeleteDocument(ctx context.Context, documentID string) error {
	return b.index.DeleteByDocumentID(ctx, documentID)
}

func (b *VectorBackend) embed(ctx context.Context, text string) (pgvector.Vector, error) {
	if err := ctx.Err(); err != nil {
		return pgvector.Vector{}, err
	}
	values := b.embedder.Embed(ctx, text)
	if len(values) == 0 {
		return pgvector.Vector{}, ErrNoEmbedding
	}
	return pgvector.NewVector(values), nil
}
