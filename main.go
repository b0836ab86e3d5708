package main

import (
	"log"

	"frodi/internal/config"
	"frodi/internal/database"
	"frodi/internal/handlers"
	"frodi/internal/logger"
	"frodi/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger.Init(cfg.LogLevel, cfg.LogFile)
	gin.DefaultWriter = logger.Writer()

	if cfg.Token == "" {
		logger.Warn("BEARER_TOKEN not set, protected routes reject every request")
	}
	if err := services.ActivateLicense(cfg.UniDoc.LicenseKey); err != nil {
		log.Fatal(err)
	}

	openaiService := services.NewOpenAIService(cfg.OpenAI)
	docxService := services.NewDocxService("")
	textSanitizer := services.NewTextSanitizer()

	var journal services.Journal
	if cfg.Postgres.Enabled() {
		db, err := database.Open(cfg.Postgres)
		if err != nil {
			log.Fatal(err)
		}
		journal = database.NewGenerationJournal(db)
		logger.Info("Generation journal enabled")
	}

	store, err := newSessionStore(cfg, openaiService)
	if err != nil {
		log.Fatal(err)
	}

	deps := services.PipelineDeps{
		Extractor: docxService,
		Sanitizer: textSanitizer,
		Completer: openaiService,
		Assembler: docxService,
		Journal:   journal,
	}
	memoFormat := func(chapters []string) services.ResponseFormat {
		return services.BuildMemoFormat(chapters, true)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.Routes{
		Tokens: services.NewTokenValidator(cfg.Token),
		Upload: services.NewPipeline(services.PipelineConfig{
			Name:      "upload",
			Validator: services.UploadValidator{Range: wordRange(cfg.Routes.Upload)},
			Output:    services.OutputDocx,
			Format:    memoFormat,
		}, deps),
		Memo: services.NewPipeline(services.PipelineConfig{
			Name:         "minnisblad",
			Protected:    true,
			UsesChapters: true,
			Validator:    services.UploadValidator{Range: wordRange(cfg.Routes.Memo), CheckFilename: true},
			Output:       services.OutputDocx,
			Format:       memoFormat,
		}, deps),
		Review: services.NewPipeline(services.PipelineConfig{
			Name:      "minnisblad-adstod",
			Protected: true,
			Validator: services.UploadValidator{Range: wordRange(cfg.Routes.Review), CheckFilename: true},
			Output:    services.OutputJSON,
			Format: func([]string) services.ResponseFormat {
				return services.BuildReviewFormat(true)
			},
		}, deps),
		Chat:           services.NewChatService(store, openaiService),
		MaxUploadBytes: cfg.Routes.MaxUploadBytes,
	})

	logger.WithFields(logrus.Fields{
		"port":      cfg.Port,
		"chatStore": cfg.Chat.Store,
		"model":     cfg.OpenAI.Model,
	}).Info("Service listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func newSessionStore(cfg *config.Config, threads services.ThreadCreator) (services.SessionStore, error) {
	if cfg.Chat.Store == "redis" {
		client, err := services.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return services.NewRedisSessionStore(client, threads, cfg.Chat.SessionTTL), nil
	}
	return services.NewMemorySessionStore(threads, cfg.Chat.SessionTTL, cfg.Chat.MaxSessions), nil
}

func wordRange(b config.WordBounds) services.WordRange {
	return services.WordRange{Min: b.Min, Max: b.Max}
}
