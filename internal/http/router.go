package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/courseatlas/courseatlas-backend/internal/http/handlers"
	httpMW "github.com/courseatlas/courseatlas-backend/internal/http/middleware"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	CourseHandler        *httpH.CourseHandler
	ModuleHandler        *httpH.ModuleHandler
	VideoHandler         *httpH.VideoHandler
	NoteHandler          *httpH.NoteHandler
	AvatarHandler        *httpH.AvatarHandler
	TransferHandler      *httpH.TransferHandler
	TranscriptionHandler *httpH.TranscriptionHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.CourseHandler != nil {
			api.POST("/courses", cfg.CourseHandler.Create)
			api.GET("/courses", cfg.CourseHandler.List)
			api.GET("/courses/:id", cfg.CourseHandler.Get)
			api.PATCH("/courses/:id", cfg.CourseHandler.Update)
			api.DELETE("/courses/:id", cfg.CourseHandler.Delete)
			api.POST("/courses/:id/access", cfg.CourseHandler.TouchAccess)
			api.POST("/courses/reorder", cfg.CourseHandler.Reorder)
			api.POST("/courses/ingest", cfg.CourseHandler.Ingest)
		}

		if cfg.ModuleHandler != nil {
			api.POST("/modules", cfg.ModuleHandler.Create)
			api.GET("/modules/:id", cfg.ModuleHandler.Get)
			api.PATCH("/modules/:id", cfg.ModuleHandler.Update)
			api.DELETE("/modules/:id", cfg.ModuleHandler.Delete)
			api.GET("/courses/:id/modules", cfg.ModuleHandler.ListByCourse)
			api.POST("/courses/:id/modules/reorder", cfg.ModuleHandler.ReorderWithinCourse)
		}

		if cfg.VideoHandler != nil {
			api.POST("/videos", cfg.VideoHandler.Create)
			api.GET("/videos/:id", cfg.VideoHandler.Get)
			api.PATCH("/videos/:id", cfg.VideoHandler.Update)
			api.DELETE("/videos/:id", cfg.VideoHandler.Delete)
			api.GET("/modules/:id/videos", cfg.VideoHandler.ListByModule)
			api.POST("/videos/:id/complete", cfg.VideoHandler.MarkComplete)
			api.DELETE("/videos/:id/complete", cfg.VideoHandler.UnmarkComplete)
			api.PUT("/videos/:id/progress", cfg.VideoHandler.UpdateWatchProgress)
			api.POST("/videos/:id/watched", cfg.VideoHandler.IncrementWatchCount)
			api.GET("/videos/:id/captions.vtt", cfg.VideoHandler.Captions)
		}

		if cfg.NoteHandler != nil {
			api.POST("/notes", cfg.NoteHandler.Create)
			api.PATCH("/notes/:id", cfg.NoteHandler.Update)
			api.DELETE("/notes/:id", cfg.NoteHandler.Delete)
			api.GET("/videos/:id/notes", cfg.NoteHandler.ListByVideo)
			api.GET("/courses/:id/notes", cfg.NoteHandler.ListByCourse)
		}

		if cfg.AvatarHandler != nil {
			api.PUT("/instructors/:name/avatar", cfg.AvatarHandler.Put)
			api.GET("/instructors/:name/avatar", cfg.AvatarHandler.Get)
			api.DELETE("/instructors/:name/avatar", cfg.AvatarHandler.Delete)
		}

		if cfg.TransferHandler != nil {
			api.GET("/library/export", cfg.TransferHandler.Export)
			api.POST("/library/import", cfg.TransferHandler.Import)
		}

		if cfg.TranscriptionHandler != nil {
			api.POST("/videos/:id/transcribe", cfg.TranscriptionHandler.Start)
			api.GET("/transcription/status", cfg.TranscriptionHandler.Status)
		}
	}

	return r
}
