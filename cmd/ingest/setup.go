package main

import (
	"context"
	"fmt"

	"github.com/fadilmartias/cv-evaluator/internal/chunker"
	"github.com/fadilmartias/cv-evaluator/internal/config"
	"github.com/fadilmartias/cv-evaluator/internal/database"
	"github.com/fadilmartias/cv-evaluator/internal/logger"
	"github.com/fadilmartias/cv-evaluator/internal/repository"
	"github.com/fadilmartias/cv-evaluator/internal/service"
	"github.com/fadilmartias/cv-evaluator/internal/store"
	"github.com/fadilmartias/cv-evaluator/internal/usecase"
	"github.com/fadilmartias/cv-evaluator/internal/util"
	"go.uber.org/zap"
)

type env struct {
	log       *zap.Logger
	store     *store.Store
	documents *usecase.DocumentUsecase
}

func setup(ctx context.Context) (*env, error) {
	appConfig := config.LoadAppConfig()
	log, err := logger.New(appConfig.JSONLogs(), appConfig.DebugLogs())
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := database.Connect(config.LoadDBConfig(), appConfig, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, err
	}

	ragConfig := config.LoadRAGConfig()
	textChunker, err := chunker.New(ragConfig.ChunkSize, ragConfig.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("chunking configuration: %w", err)
	}

	providers := service.NewProviders(ctx, log)
	documentStore := store.Open(ctx, store.Options{
		VectorEnabled: ragConfig.VectorEnabled,
		Index:         repository.NewChunkRepository(db),
		Embedder:      providers.Embedder,
		FilePath:      ragConfig.StorePath,
	}, textChunker, util.NewExtractor(log), log)

	return &env{
		log:       log,
		store:     documentStore,
		documents: usecase.NewDocumentUsecase(repository.NewDocumentRepository(db), documentStore, log),
	}, nil
}
