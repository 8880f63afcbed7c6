// Command ingest loads the reference documents the evaluator retrieves
// context from: the job description, the case study brief and both rubrics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest system documents into the document store",
	Long:  "Chunks the job description, case study brief, CV rubric and project rubric and stores them in the vector index, or the JSON file store when no vector index is available.",
	RunE:  runIngest,
}

var (
	ingestDir         string
	ingestForce       bool
	ingestConcurrency int
)

func init() {
	rootCmd.Flags().StringVarP(&ingestDir, "dir", "d", "sample_documents", "Directory holding the system documents")
	rootCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "Re-ingest documents that were already ingested")
	rootCmd.Flags().IntVarP(&ingestConcurrency, "concurrency", "c", 2, "Documents ingested in parallel")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
