package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadilmartias/cv-evaluator/internal/logger"
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/fadilmartias/cv-evaluator/internal/response"
	"github.com/fadilmartias/cv-evaluator/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ErrDocumentExists is returned when a system document is already ingested
// and re-ingestion was not requested.
var ErrDocumentExists = errors.New("document already ingested")

type DocumentRepository interface {
	SaveDocument(doc *model.Document) error
	FindDocumentByID(id string) (*model.Document, error)
	ListDocuments(page, pageSize int) ([]model.Document, int64, error)
}

type DocumentStore interface {
	Ingest(ctx context.Context, src store.Source, docType model.DocumentType, documentID string) (int, error)
	Replace(ctx context.Context, src store.Source, docType model.DocumentType, documentID string) (int, error)
	Backend() string
}

type DocumentUsecase struct {
	documentRepo DocumentRepository
	store        DocumentStore
	log          *zap.Logger
	now          func() time.Time
}

func NewDocumentUsecase(documentRepo DocumentRepository, store DocumentStore, log *zap.Logger) *DocumentUsecase {
	return &DocumentUsecase{
		documentRepo: documentRepo,
		store:        store,
		log:          logger.OrNop(log),
		now:          time.Now,
	}
}

type IngestRequest struct {
	// ID is generated when zero.
	ID           uuid.UUID
	Title        string
	Filename     string
	DocumentType model.DocumentType
	Source       store.Source
	// Replace deletes the document's previous chunks first.
	Replace bool
}

// Ingest chunks the source into the document store and records the document.
func (uc *DocumentUsecase) Ingest(ctx context.Context, req IngestRequest) (*model.Document, error) {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	doc := &model.Document{
		ID:           req.ID,
		Title:        req.Title,
		Filename:     req.Filename,
		DocumentType: req.DocumentType,
		Backend:      uc.store.Backend(),
	}
	if doc.Title == "" {
		doc.Title = titleFromFilename(req.Filename, req.DocumentType)
	}
	if req.Replace {
		if existing, err := uc.documentRepo.FindDocumentByID(req.ID.String()); err == nil && existing != nil {
			doc.CreatedAt = existing.CreatedAt
		}
	}

	ingest := uc.store.Ingest
	if req.Replace {
		ingest = uc.store.Replace
	}
	n, err := ingest(ctx, req.Source, req.DocumentType, doc.ID.String())
	if err != nil {
		uc.log.Error("document ingestion failed",
			zap.String("document_id", doc.ID.String()),
			zap.String("document_type", string(req.DocumentType)),
			zap.Error(err),
		)
		return nil, err
	}

	now := uc.now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	doc.ChunkCount = n
	if err := uc.documentRepo.SaveDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SystemDocument is one of the reference documents the evaluator retrieves
// context from.
type SystemDocument struct {
	Path         string
	DocumentType model.DocumentType
}

// SystemDocumentID is stable per document type so re-ingestion replaces
// the previous chunks.
func SystemDocumentID(docType model.DocumentType) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("system/"+string(docType)))
}

// IngestSystem ingests one reference document. An already ingested document
// is skipped with ErrDocumentExists unless force is set.
func (uc *DocumentUsecase) IngestSystem(ctx context.Context, sd SystemDocument, force bool) (*model.Document, error) {
	id := SystemDocumentID(sd.DocumentType)
	existing, err := uc.documentRepo.FindDocumentByID(id.String())
	exists := err == nil && existing != nil
	if exists && !force {
		uc.log.Info("document already exists, skipping",
			zap.String("document_type", string(sd.DocumentType)),
			zap.String("path", sd.Path),
		)
		return existing, ErrDocumentExists
	}

	return uc.Ingest(ctx, IngestRequest{
		ID:           id,
		Filename:     filepath.Base(sd.Path),
		DocumentType: sd.DocumentType,
		Source:       store.FromFile(sd.Path),
		Replace:      exists || force,
	})
}

// List returns a page of documents. Out of range paging falls back to the
// defaults.
func (uc *DocumentUsecase) List(page, pageSize int) ([]model.Document, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	docs, total, err := uc.documentRepo.ListDocuments(page, pageSize)
	if err != nil {
		return nil, nil, err
	}
	return docs, response.NewPagination(page, pageSize, total, len(docs)), nil
}

func titleFromFilename(filename string, docType model.DocumentType) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if name == "" || name == "." {
		return string(docType)
	}
	return name
}
