// Package store ingests documents as chunks and searches them. A Store wraps
// one Backend, chosen once by Open: a pgvector index when it can be brought
// up, otherwise a JSON file with keyword search.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/cv-evaluator/internal/apperror"
	"github.com/fadilmartias/cv-evaluator/internal/chunker"
	"github.com/fadilmartias/cv-evaluator/internal/logger"
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"go.uber.org/zap"
)

const DefaultLimit = 5

// Backend persists chunks and answers searches. Empty types means every type.
type Backend interface {
	Name() string
	Add(ctx context.Context, chunks []model.Chunk) error
	Search(ctx context.Context, query string, types []model.DocumentType, limit int) ([]model.Chunk, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

type FileExtractor interface {
	ExtractFile(path string) (string, error)
}

// Source is either a file on disk or already-extracted text.
type Source struct {
	Path string
	Text string
}

func FromFile(path string) Source { return Source{Path: path} }
func FromText(text string) Source { return Source{Text: text} }

func (s Source) name() string {
	if s.Path != "" {
		return s.Path
	}
	return "text"
}

type Store struct {
	backend   Backend
	chunker   *chunker.Chunker
	extractor FileExtractor
	log       *zap.Logger
}

func New(backend Backend, c *chunker.Chunker, extractor FileExtractor, log *zap.Logger) *Store {
	return &Store{
		backend:   backend,
		chunker:   c,
		extractor: extractor,
		log:       logger.WithFields(log, zap.String("store_backend", backend.Name())),
	}
}

func (s *Store) Backend() string {
	return s.backend.Name()
}

// Ingest chunks the source and adds every chunk under documentID. A second
// call for the same document does not update it: the file backend appends a
// duplicate set of chunks, while the vector backend keeps the chunks already
// stored under each chunk id and drops the new ones. Use Replace to re-ingest.
func (s *Store) Ingest(ctx context.Context, src Source, docType model.DocumentType, documentID string) (int, error) {
	if !docType.Valid() {
		return 0, fmt.Errorf("unknown document type %q", docType)
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return 0, errors.New("document id is required")
	}

	text, err := s.text(src)
	if err != nil {
		return 0, err
	}

	chunks := model.NewChunks(s.chunker.Split(text), docType, documentID)
	if err := s.backend.Add(ctx, chunks); err != nil {
		return 0, s.storageErr("add", err)
	}

	s.log.Info("document ingested",
		zap.String("document_id", documentID),
		zap.String("document_type", string(docType)),
		zap.Int("chunks", len(chunks)),
	)
	return len(chunks), nil
}

// Replace deletes every chunk of documentID and ingests src in its place.
func (s *Store) Replace(ctx context.Context, src Source, docType model.DocumentType, documentID string) (int, error) {
	if err := s.DeleteDocument(ctx, documentID); err != nil {
		return 0, err
	}
	return s.Ingest(ctx, src, docType, documentID)
}

func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	if err := s.backend.DeleteDocument(ctx, documentID); err != nil {
		return s.storageErr("delete", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, query string, types []model.DocumentType, limit int) ([]model.Chunk, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	chunks, err := s.backend.Search(ctx, query, types, limit)
	if err != nil {
		return nil, s.storageErr("search", err)
	}
	return chunks, nil
}

func (s *Store) text(src Source) (string, error) {
	text := src.Text
	if src.Path != "" {
		if s.extractor == nil {
			return "", &apperror.ExtractionError{Source: src.Path, Err: errors.New("no extractor configured")}
		}
		extracted, err := s.extractor.ExtractFile(src.Path)
		if err != nil {
			return "", err
		}
		text = extracted
	}
	if strings.TrimSpace(text) == "" {
		return "", &apperror.ExtractionError{Source: src.name()}
	}
	return text, nil
}

func (s *Store) storageErr(op string, err error) error {
	var storageErr *apperror.StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return &apperror.StorageError{Backend: s.backend.Name(), Op: op, Err: err}
}
