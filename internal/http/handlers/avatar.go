package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courseatlas/courseatlas-backend/internal/http/response"
	"github.com/courseatlas/courseatlas-backend/internal/library"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type AvatarHandler struct {
	log   *logger.Logger
	store *library.Store
}

func NewAvatarHandler(log *logger.Logger, store *library.Store) *AvatarHandler {
	return &AvatarHandler{
		log:   log.With("handler", "AvatarHandler"),
		store: store,
	}
}

type avatarRequest struct {
	Image string `json:"image" binding:"required"`
}

func (h *AvatarHandler) Put(c *gin.Context) {
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	avatar, err := h.store.SetInstructorAvatar(c.Request.Context(), c.Param("name"), req.Image)
	if err != nil {
		response.RespondFromError(c, "set_avatar_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"avatar": avatar})
}

func (h *AvatarHandler) Get(c *gin.Context) {
	avatar, err := h.store.GetInstructorAvatar(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.RespondFromError(c, "get_avatar_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"avatar": avatar})
}

func (h *AvatarHandler) Delete(c *gin.Context) {
	if err := h.store.RemoveInstructorAvatar(c.Request.Context(), c.Param("name")); err != nil {
		response.RespondFromError(c, "delete_avatar_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
