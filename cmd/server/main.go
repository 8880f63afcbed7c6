package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/cv-evaluator/internal/chunker"
	"github.com/fadilmartias/cv-evaluator/internal/config"
	"github.com/fadilmartias/cv-evaluator/internal/database"
	"github.com/fadilmartias/cv-evaluator/internal/domain/fiber/handler"
	"github.com/fadilmartias/cv-evaluator/internal/evaluation"
	applogger "github.com/fadilmartias/cv-evaluator/internal/logger"
	"github.com/fadilmartias/cv-evaluator/internal/middleware"
	"github.com/fadilmartias/cv-evaluator/internal/repository"
	"github.com/fadilmartias/cv-evaluator/internal/retriever"
	"github.com/fadilmartias/cv-evaluator/internal/service"
	"github.com/fadilmartias/cv-evaluator/internal/store"
	"github.com/fadilmartias/cv-evaluator/internal/usecase"
	"github.com/fadilmartias/cv-evaluator/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	zlog, err := applogger.New(appConfig.JSONLogs(), appConfig.DebugLogs())
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(config.LoadDBConfig(), appConfig, zlog)
	if err != nil {
		zlog.Fatal("database unavailable", zap.Error(err))
	}
	if err := database.Migrate(db, zlog); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	ragConfig := config.LoadRAGConfig()
	llmConfig := config.LoadLLMConfig()

	textChunker, err := chunker.New(ragConfig.ChunkSize, ragConfig.ChunkOverlap)
	if err != nil {
		zlog.Fatal("invalid chunking configuration", zap.Error(err))
	}
	providers := service.NewProviders(ctx, zlog)
	extractor := util.NewExtractor(zlog)
	documentStore := store.Open(ctx, store.Options{
		VectorEnabled: ragConfig.VectorEnabled,
		Index:         repository.NewChunkRepository(db),
		Embedder:      providers.Embedder,
		FilePath:      ragConfig.StorePath,
	}, textChunker, extractor, zlog)

	evaluator := evaluation.New(
		retriever.New(documentStore, zlog),
		providers.LLM,
		evaluation.Config{
			Temperature:   llmConfig.Temperature,
			MaxTokens:     llmConfig.MaxTokens,
			ContextChunks: ragConfig.TopK,
		},
		zlog,
	)

	evaluationUC := usecase.NewEvaluationUsecase(repository.NewEvaluationRepository(db), evaluator, zlog)
	documentUC := usecase.NewDocumentUsecase(repository.NewDocumentRepository(db), documentStore, zlog)

	if _, _, err := evaluationUC.Recover(); err != nil {
		zlog.Error("could not recover unfinished evaluations", zap.Error(err))
	}

	app := newApp(appConfig, zlog)
	handler.NewEvaluateHandler(evaluationUC, extractor, appConfig.UploadDir, zlog).RegisterRoutes(app)
	handler.NewDocumentHandler(documentUC, appConfig.UploadDir).RegisterRoutes(app)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				zlog.Debug("runtime stats", zap.Int("goroutines", runtime.NumGoroutine()))
			}
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			zlog.Error("server shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("server running",
		zap.String("port", appConfig.Port),
		zap.String("document_store", documentStore.Backend()),
	)
	if err := app.Listen(appConfig.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}

	zlog.Info("waiting for running evaluations")
	evaluationUC.Wait()
}

func newApp(appConfig *config.AppConfig, zlog *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appConfig.Name,
		BodyLimit:    12 * 1024 * 1024,
		ErrorHandler: handler.ErrorHandler(zlog),
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))
	return app
}
