package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/courseatlas/courseatlas-backend/internal/data/db"
	"github.com/courseatlas/courseatlas-backend/internal/data/repos"
	httpapi "github.com/courseatlas/courseatlas-backend/internal/http"
	httpH "github.com/courseatlas/courseatlas-backend/internal/http/handlers"
	"github.com/courseatlas/courseatlas-backend/internal/library"
	"github.com/courseatlas/courseatlas-backend/internal/media"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
	"github.com/courseatlas/courseatlas-backend/internal/services"
	"github.com/courseatlas/courseatlas-backend/internal/summarize"
	"github.com/courseatlas/courseatlas-backend/internal/transcribe"
	"github.com/courseatlas/courseatlas-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	addr := utils.GetEnv("LISTEN_ADDR", ":8080", log)

	// SQLite
	sqliteService, err := db.NewSQLiteService(log)
	if err != nil {
		log.Error("SQLite init failed", "error", err)
		os.Exit(1)
	}
	if err := sqliteService.AutoMigrateAll(); err != nil {
		log.Error("SQLite auto migration failed", "error", err)
		os.Exit(1)
	}
	theDB := sqliteService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	courseRepo := repos.NewCourseRepo(theDB, log)
	moduleRepo := repos.NewModuleRepo(theDB, log)
	videoRepo := repos.NewVideoRepo(theDB, log)
	noteRepo := repos.NewNoteRepo(theDB, log)
	avatarRepo := repos.NewAvatarRepo(theDB, log)

	// Library store
	store := library.NewStore(theDB, log, courseRepo, moduleRepo, videoRepo, noteRepo, avatarRepo)

	// Media + transcription + summarization
	log.Info("Setting up Services from main...")
	extractor := media.New(log)
	if err := extractor.AssertReady(context.Background()); err != nil {
		log.Warn("Media tools unavailable, transcription will fail until installed", "error", err)
	}
	recognizer := transcribe.NewGCPRecognizer(log)
	engine := transcribe.NewEngine(log, recognizer)
	summarizer := summarize.NewClient(log)
	pipeline := services.NewTranscriptionPipeline(log, store, extractor, engine, summarizer)

	// Handlers
	log.Info("Setting up Handlers from main...")
	server := httpapi.NewServer(httpapi.RouterConfig{
		Log:                  log,
		CourseHandler:        httpH.NewCourseHandler(log, store),
		ModuleHandler:        httpH.NewModuleHandler(log, store),
		VideoHandler:         httpH.NewVideoHandler(log, store),
		NoteHandler:          httpH.NewNoteHandler(log, store),
		AvatarHandler:        httpH.NewAvatarHandler(log, store),
		TransferHandler:      httpH.NewTransferHandler(log, store),
		TranscriptionHandler: httpH.NewTranscriptionHandler(log, pipeline, engine),
		HealthHandler:        httpH.NewHealthHandler(),
	})

	log.Info("Starting server", "addr", addr)
	if err := server.Run(addr); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
