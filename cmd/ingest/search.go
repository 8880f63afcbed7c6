package main

import (
	"fmt"

	"github.com/fadilmartias/cv-evaluator/internal/config"
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/fadilmartias/cv-evaluator/internal/retriever"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Print the context retrieved for a query",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var (
	searchTypes []string
	searchLimit int
)

func init() {
	searchCmd.Flags().StringSliceVarP(&searchTypes, "type", "t", nil, "Restrict to document types (repeatable)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Number of chunks (defaults to RAG_TOP_K)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	types := make([]model.DocumentType, 0, len(searchTypes))
	for _, s := range searchTypes {
		t, err := model.ParseDocumentType(s)
		if err != nil {
			return err
		}
		types = append(types, t)
	}
	limit := searchLimit
	if limit <= 0 {
		limit = config.LoadRAGConfig().TopK
	}

	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.log.Sync()

	block := retriever.New(e.store, e.log).Retrieve(cmd.Context(), args[0], types, limit)
	if block == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "no matching context")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), block)
	return nil
}
