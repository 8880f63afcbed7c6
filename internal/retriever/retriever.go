// Package retriever turns store search results into a context block for
// prompts.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/fadilmartias/cv-evaluator/internal/apperror"
	"github.com/fadilmartias/cv-evaluator/internal/logger"
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"go.uber.org/zap"
)

type Searcher interface {
	Search(ctx context.Context, query string, types []model.DocumentType, limit int) ([]model.Chunk, error)
}

type Retriever struct {
	searcher Searcher
	log      *zap.Logger
}

func New(searcher Searcher, log *zap.Logger) *Retriever {
	return &Retriever{searcher: searcher, log: logger.OrNop(log)}
}

// Retrieve returns up to n matching chunks formatted as "[type]: text" and
// separated by blank lines. Search failures are logged and yield "".
func (r *Retriever) Retrieve(ctx context.Context, query string, types []model.DocumentType, n int) string {
	chunks, err := r.searcher.Search(ctx, query, types, n)
	if err != nil {
		r.log.Warn("context retrieval failed",
			zap.String("query", logger.TruncateForLog(query, 80)),
			zap.String("error_code", apperror.Code(err)),
			zap.Error(err),
		)
		return ""
	}
	r.log.Debug("context retrieved",
		zap.String("query", logger.TruncateForLog(query, 80)),
		zap.Int("chunks", len(chunks)),
	)
	return Format(chunks)
}

func Format(chunks []model.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, fmt.Sprintf("[%s]: %s", c.DocumentType, c.Text))
	}
	return strings.Join(parts, "\n\n")
}
