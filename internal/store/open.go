package store

import (
	"context"
	"time"

	"github.com/fadilmartias/cv-evaluator/internal/chunker"
	"github.com/fadilmartias/cv-evaluator/internal/logger"
	"go.uber.org/zap"
)

const probeTimeout = 10 * time.Second

type Options struct {
	// VectorEnabled allows the vector backend; Index and Embedder must both
	// be set for it to be tried.
	VectorEnabled bool
	Index         ChunkIndex
	Embedder      Embedder
	FilePath      string
}

// OpenBackend picks the backend once. The vector backend is used when it is
// enabled and its index comes up; any failure falls back to the file backend.
func OpenBackend(ctx context.Context, opts Options, log *zap.Logger) Backend {
	log = logger.OrNop(log)

	if opts.VectorEnabled && opts.Index != nil && opts.Embedder != nil {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := opts.Index.Ensure(probeCtx)
		cancel()
		if err == nil {
			log.Info("using vector document store")
			return NewVectorBackend(opts.Index, opts.Embedder)
		}
		log.Warn("vector store unavailable, falling back to file store", zap.Error(err))
	} else if opts.VectorEnabled {
		log.Warn("vector store enabled but no index or embedder configured, using file store")
	}

	log.Info("using file document store", zap.String("path", opts.FilePath))
	return NewFileBackend(opts.FilePath, log)
}

// Open selects a backend with OpenBackend and wraps it in a Store.
func Open(ctx context.Context, opts Options, c *chunker.Chunker, extractor FileExtractor, log *zap.Logger) *Store {
	return New(OpenBackend(ctx, opts, log), c, extractor, log)
}
