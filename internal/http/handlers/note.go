package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/http/response"
	"github.com/courseatlas/courseatlas-backend/internal/library"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type NoteHandler struct {
	log   *logger.Logger
	store *library.Store
}

func NewNoteHandler(log *logger.Logger, store *library.Store) *NoteHandler {
	return &NoteHandler{
		log:   log.With("handler", "NoteHandler"),
		store: store,
	}
}

func (h *NoteHandler) Create(c *gin.Context) {
	var note types.Note
	if err := c.ShouldBindJSON(&note); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, err := h.store.AddNote(c.Request.Context(), &note)
	if err != nil {
		response.RespondFromError(c, "create_note_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"note": created})
}

func (h *NoteHandler) ListByVideo(c *gin.Context) {
	notes, err := h.store.GetNotesByVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, "list_notes_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"notes": notes})
}

func (h *NoteHandler) ListByCourse(c *gin.Context) {
	notes, err := h.store.GetNotesByCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, "list_notes_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"notes": notes})
}

func (h *NoteHandler) Update(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	note, err := h.store.UpdateNote(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		response.RespondFromError(c, "update_note_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"note": note})
}

func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteNote(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondFromError(c, "delete_note_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
