package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courseatlas/courseatlas-backend/internal/captions"
	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/http/response"
	"github.com/courseatlas/courseatlas-backend/internal/library"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type VideoHandler struct {
	log   *logger.Logger
	store *library.Store
}

func NewVideoHandler(log *logger.Logger, store *library.Store) *VideoHandler {
	return &VideoHandler{
		log:   log.With("handler", "VideoHandler"),
		store: store,
	}
}

func (h *VideoHandler) Create(c *gin.Context) {
	var video types.Video
	if err := c.ShouldBindJSON(&video); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, err := h.store.AddVideo(c.Request.Context(), &video)
	if err != nil {
		response.RespondFromError(c, "create_video_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"video": created})
}

func (h *VideoHandler) Get(c *gin.Context) {
	video, err := h.store.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, "get_video_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"video": video})
}

func (h *VideoHandler) ListByModule(c *gin.Context) {
	videos, err := h.store.GetVideosByModule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, "list_videos_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"videos": videos})
}

func (h *VideoHandler) Update(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	video, err := h.store.UpdateVideo(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		response.RespondFromError(c, "update_video_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"video": video})
}

func (h *VideoHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteVideo(c.Request.Context(), c.Param("id")); err != nil {
		h.log.Error("Delete video failed", "error", err, "video_id", c.Param("id"))
		response.RespondFromError(c, "delete_video_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func (h *VideoHandler) MarkComplete(c *gin.Context) {
	video, err := h.store.MarkVideoComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, "complete_video_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"video": video})
}

func (h *VideoHandler) UnmarkComplete(c *gin.Context) {
	video, err := h.store.UnmarkVideoComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, "uncomplete_video_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"video": video})
}

type watchProgressRequest struct {
	Progress float64 `json:"progress"`
	Position float64 `json:"position"`
}

func (h *VideoHandler) UpdateWatchProgress(c *gin.Context) {
	var req watchProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	video, err := h.store.UpdateWatchProgress(c.Request.Context(), c.Param("id"), req.Progress, req.Position)
	if err != nil {
		response.RespondFromError(c, "watch_progress_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"video": video})
}

func (h *VideoHandler) IncrementWatchCount(c *gin.Context) {
	if err := h.store.IncrementWatchCount(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondFromError(c, "watch_count_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"counted": true})
}

// Captions serves the video's caption cues as a WebVTT document.
func (h *VideoHandler) Captions(c *gin.Context) {
	video, err := h.store.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, "get_video_failed", err)
		return
	}
	if len(video.CaptionChunks) == 0 {
		response.RespondError(c, http.StatusNotFound, "no_captions", nil)
		return
	}
	c.Data(http.StatusOK, "text/vtt; charset=utf-8", []byte(captions.RenderWebVTT(video.CaptionChunks)))
}
