package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/fadilmartias/cv-evaluator/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// systemDocuments maps each reference document type to its base filename.
var systemDocuments = []struct {
	name    string
	docType model.DocumentType
}{
	{"job_description", model.DocumentTypeJobDescription},
	{"case_study_brief", model.DocumentTypeCaseStudyBrief},
	{"cv_scoring_rubric", model.DocumentTypeCVRubric},
	{"project_scoring_rubric", model.DocumentTypeProjectRubric},
}

var documentExtensions = []string{".md", ".txt", ".pdf"}

// findSystemDocuments returns the documents present in dir; missing ones are
// reported by name.
func findSystemDocuments(dir string) ([]usecase.SystemDocument, []string) {
	var (
		found   []usecase.SystemDocument
		missing []string
	)
	for _, sd := range systemDocuments {
		path := ""
		for _, ext := range documentExtensions {
			candidate := filepath.Join(dir, sd.name+ext)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			missing = append(missing, sd.name)
			continue
		}
		found = append(found, usecase.SystemDocument{Path: path, DocumentType: sd.docType})
	}
	return found, missing
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	docs, missing := findSystemDocuments(ingestDir)
	if len(docs) == 0 {
		return fmt.Errorf("no system documents found in %s", ingestDir)
	}

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	for _, name := range missing {
		e.log.Warn("document file not found", zap.String("name", name), zap.String("dir", ingestDir))
	}
	e.log.Info("document ingestion started",
		zap.Bool("force", ingestForce),
		zap.Int("documents", len(docs)),
		zap.String("backend", e.store.Backend()),
	)

	g, gCtx := errgroup.WithContext(ctx)
	if ingestConcurrency > 0 {
		g.SetLimit(ingestConcurrency)
	}
	for _, sd := range docs {
		g.Go(func() error {
			doc, err := e.documents.IngestSystem(gCtx, sd, ingestForce)
			switch {
			case errors.Is(err, usecase.ErrDocumentExists):
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %s (already ingested, use --force to re-ingest)\n", sd.Path)
				return nil
			case err != nil:
				return fmt.Errorf("ingest %s: %w", sd.Path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %s as %s: %d chunks\n", sd.Path, doc.DocumentType, doc.ChunkCount)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.log.Info("document ingestion finished")
	return nil
}
