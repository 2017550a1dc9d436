package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"quiz3d/internal/catalog"
	"quiz3d/internal/config"
	apihttp "quiz3d/internal/http"
	"quiz3d/internal/llm"
	"quiz3d/internal/meshy"
	"quiz3d/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	demoMode := cfg.DemoEnabled()

	// Sin GEMINI_API_KEY el supplier trabaja solo con el pool local y el
	// resumen usa el texto determinístico.
	var llmClient llm.Client
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini client init failed, falling back to local pool", zap.Error(err))
		} else {
			defer gemini.Close()
			llmClient = gemini
		}
	}

	meshyClient := meshy.NewClient(cfg.MeshyBaseURL, cfg.MeshyAPIKey, logger)

	objects, err := catalog.NewGCSStore(ctx, cfg.StorageBucket)
	if err != nil {
		logger.Fatal("storage init", zap.Error(err))
	}
	docs, err := catalog.NewFirestoreStore(ctx, cfg.FirebaseProjectID)
	if err != nil {
		logger.Fatal("firestore init", zap.Error(err))
	}
	defer docs.Close()
	registrar := catalog.NewRegistrar(objects, docs, nil, logger)

	questionSvc := service.NewQuestionService(llmClient, logger)
	summarySvc := service.NewSummaryService(llmClient, logger)
	quizSvc := service.NewQuizService(meshyClient, registrar, summarySvc, logger, demoMode)

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		logger.Fatal("create download dir", zap.Error(err))
	}

	quizHandler := apihttp.NewQuizHandler(logger, questionSvc, quizSvc)
	taskHandler := apihttp.NewTaskHandler(logger, meshyClient, demoMode, cfg.DownloadDir)
	catalogHandler := apihttp.NewCatalogHandler(logger, registrar)
	router := apihttp.NewRouter(logger, quizHandler, taskHandler, catalogHandler, cfg.DownloadDir)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.Bool("demo_mode", demoMode))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
