package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/fadilmartias/cv-evaluator/internal/apperror"
	"github.com/fadilmartias/cv-evaluator/internal/chunker"
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) ExtractFile(path string) (string, error) {
	return f.text, f.err
}

type fakeEmbedder struct {
	embed func(text string) []float32
}

func (f fakeEmbedder) Embed(ctx context.Context, text string) []float32 {
	return f.embed(text)
}

type fakeIndex struct {
	mu        sync.Mutex
	ensureErr error
	inserted  []model.Chunk
	deleted   []string
	searched  []pgvector.Vector
	result    []model.Chunk
}

func (f *fakeIndex) Ensure(ctx context.Context) error { return f.ensureErr }

// Insert keeps an existing chunk id, like the postgres index.
func (f *fakeIndex) Insert(ctx context.Context, chunks []model.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range chunks {
		if f.has(c.ID) {
			continue
		}
		f.inserted = append(f.inserted, c)
	}
	return nil
}

func (f *fakeIndex) has(id string) bool {
	for _, c := range f.inserted {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (f *fakeIndex) Search(ctx context.Context, embedding pgvector.Vector, types []model.DocumentType, limit int) ([]model.Chunk, error) {
	f.searched = append(f.searched, embedding)
	return f.result, nil
}

func (f *fakeIndex) DeleteByDocumentID(ctx context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, documentID)
	kept := f.inserted[:0:0]
	for _, c := range f.inserted {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	f.inserted = kept
	return nil
}

func newTestChunker(t *testing.T, size, overlap int) *chunker.Chunker {
	c, err := chunker.New(size, overlap)
	require.NoError(t, err)
	return c
}

func newFileStore(t *testing.T, extractor FileExtractor) *Store {
	backend := NewFileBackend(storePath(t), zaptest.NewLogger(t))
	return New(backend, newTestChunker(t, 1000, 200), extractor, zaptest.NewLogger(t))
}

func TestStoreIngestText(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, nil)

	n, err := s.Ingest(ctx, FromText("We need a Go engineer."), model.DocumentTypeJobDescription, "jd")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, BackendFile, s.Backend())

	got, err := s.Search(ctx, "engineer", []model.DocumentType{model.DocumentTypeJobDescription}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "jd_chunk_0", got[0].ID)
}

func TestStoreIngestFile(t *testing.T) {
	s := newFileStore(t, fakeExtractor{text: "Rubric: score code quality from 1 to 5."})

	n, err := s.Ingest(context.Background(), FromFile("rubric.pdf"), model.DocumentTypeProjectRubric, "project_rubric")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStoreIngestEmptyText(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, fakeExtractor{text: "  \n "})

	_, err := s.Ingest(ctx, FromText(""), model.DocumentTypeCV, "cv")
	assert.ErrorIs(t, err, apperror.ErrExtraction)

	_, err = s.Ingest(ctx, FromFile("empty.pdf"), model.DocumentTypeCV, "cv")
	var extractionErr *apperror.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "empty.pdf", extractionErr.Source)
}

func TestStoreIngestRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, nil)

	_, err := s.Ingest(ctx, FromText("text"), model.DocumentType("resume"), "id")
	assert.Error(t, err)

	_, err = s.Ingest(ctx, FromText("text"), model.DocumentTypeCV, " ")
	assert.Error(t, err)
}

func TestStoreIngestIsAdditiveAndReplaceIsNot(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, nil)
	text := strings.Repeat("Distributed systems knowledge. ", 80)

	first, err := s.Ingest(ctx, FromText(text), model.DocumentTypeCaseStudyBrief, "brief")
	require.NoError(t, err)
	require.Greater(t, first, 1)

	_, err = s.Ingest(ctx, FromText(text), model.DocumentTypeCaseStudyBrief, "brief")
	require.NoError(t, err)
	got, err := s.Search(ctx, "distributed", nil, 100)
	require.NoError(t, err)
	assert.Len(t, got, 2*first)

	n, err := s.Replace(ctx, FromText(text), model.DocumentTypeCaseStudyBrief, "brief")
	require.NoError(t, err)
	got, err = s.Search(ctx, "distributed", nil, 100)
	require.NoError(t, err)
	assert.Len(t, got, n)
}

func TestVectorStoreIngestAndSearch(t *testing.T) {
	ctx := context.Background()
	index := &fakeIndex{result: []model.Chunk{{ID: "jd_chunk_0", Text: "match", DocumentType: model.DocumentTypeJobDescription}}}
	embedder := fakeEmbedder{embed: func(text string) []float32 { return []float32{0.1, 0.2, 0.3} }}
	s := New(NewVectorBackend(index, embedder), newTestChunker(t, 1000, 200), nil, zaptest.NewLogger(t))

	n, err := s.Ingest(ctx, FromText("Looking for a backend engineer."), model.DocumentTypeJobDescription, "jd")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, index.inserted, 1)
	require.NotNil(t, index.inserted[0].Embedding)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, index.inserted[0].Embedding.Slice())
	assert.Equal(t, "jd_chunk_0", index.inserted[0].ID)

	got, err := s.Search(ctx, "backend", []model.DocumentType{model.DocumentTypeJobDescription}, 5)
	require.NoError(t, err)
	assert.Equal(t, index.result, got)
	require.Len(t, index.searched, 1)

	require.NoError(t, s.DeleteDocument(ctx, "jd"))
	assert.Equal(t, []string{"jd"}, index.deleted)
	assert.Equal(t, BackendVector, s.Backend())
}

func TestVectorStoreIngestKeepsExistingChunks(t *testing.T) {
	ctx := context.Background()
	index := &fakeIndex{}
	embedder := fakeEmbedder{embed: func(text string) []float32 { return []float32{0.1, 0.2, 0.3} }}
	s := New(NewVectorBackend(index, embedder), newTestChunker(t, 1000, 200), nil, zaptest.NewLogger(t))

	_, err := s.Ingest(ctx, FromText("Original brief."), model.DocumentTypeCaseStudyBrief, "brief")
	require.NoError(t, err)
	_, err = s.Ingest(ctx, FromText("Revised brief."), model.DocumentTypeCaseStudyBrief, "brief")
	require.NoError(t, err)
	require.Len(t, index.inserted, 1)
	assert.Equal(t, "Original brief.", index.inserted[0].Text)

	_, err = s.Replace(ctx, FromText("Revised brief."), model.DocumentTypeCaseStudyBrief, "brief")
	require.NoError(t, err)
	require.Len(t, index.inserted, 1)
	assert.Equal(t, "Revised brief.", index.inserted[0].Text)
}

func TestVectorStoreEmbeddingUnavailable(t *testing.T) {
	ctx := context.Background()
	index := &fakeIndex{}
	embedder := fakeEmbedder{embed: func(text string) []float32 { return nil }}
	s := New(NewVectorBackend(index, embedder), newTestChunker(t, 1000, 200), nil, zaptest.NewLogger(t))

	_, err := s.Ingest(ctx, FromText("some text"), model.DocumentTypeCV, "cv")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrStorage)
	assert.ErrorIs(t, err, ErrNoEmbedding)
	assert.Empty(t, index.inserted)

	_, err = s.Search(ctx, "query", nil, 5)
	var storageErr *apperror.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, BackendVector, storageErr.Backend)
	assert.Equal(t, "search", storageErr.Op)
}

func TestOpenBackendProbe(t *testing.T) {
	ctx := context.Background()
	embedder := fakeEmbedder{embed: func(text string) []float32 { return []float32{1} }}

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "vector index available",
			opts: Options{VectorEnabled: true, Index: &fakeIndex{}, Embedder: embedder},
			want: BackendVector,
		},
		{
			name: "vector index fails to come up",
			opts: Options{VectorEnabled: true, Index: &fakeIndex{ensureErr: errors.New("extension \"vector\" is not available")}, Embedder: embedder},
			want: BackendFile,
		},
		{
			name: "no embedder",
			opts: Options{VectorEnabled: true, Index: &fakeIndex{}},
			want: BackendFile,
		},
		{
			name: "vector disabled",
			opts: Options{Index: &fakeIndex{}, Embedder: embedder},
			want: BackendFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.FilePath = storePath(t)
			backend := OpenBackend(ctx, tt.opts, zaptest.NewLogger(t))
			assert.Equal(t, tt.want, backend.Name())
		})
	}
}

func TestOpen(t *testing.T) {
	s := Open(context.Background(), Options{FilePath: storePath(t)}, newTestChunker(t, 100, 10), nil, zaptest.NewLogger(t))
	assert.Equal(t, BackendFile, s.Backend())
}
