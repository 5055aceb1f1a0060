package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courseatlas/courseatlas-backend/internal/http/response"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
	"github.com/courseatlas/courseatlas-backend/internal/services"
	"github.com/courseatlas/courseatlas-backend/internal/transcribe"
)

// TranscriptionHandler kicks off the transcription pipeline for a video and
// exposes the engine's current stage. A run is fire-and-forget: the request
// returns immediately and the pipeline writes its results onto the video row.
type TranscriptionHandler struct {
	log      *logger.Logger
	pipeline *services.TranscriptionPipeline
	engine   *transcribe.Engine
}

func NewTranscriptionHandler(log *logger.Logger, pipeline *services.TranscriptionPipeline, engine *transcribe.Engine) *TranscriptionHandler {
	return &TranscriptionHandler{
		log:      log.With("handler", "TranscriptionHandler"),
		pipeline: pipeline,
		engine:   engine,
	}
}

func (h *TranscriptionHandler) Start(c *gin.Context) {
	videoID := c.Param("id")

	go func() {
		// Detached from the request context; the run outlives the response.
		if err := h.pipeline.Run(context.Background(), videoID, nil); err != nil {
			h.log.Error("Transcription run failed", "video_id", videoID, "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"started": true, "videoId": videoID})
}

func (h *TranscriptionHandler) Status(c *gin.Context) {
	response.RespondOK(c, gin.H{"stage": h.engine.Stage()})
}
