package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/http/response"
	"github.com/courseatlas/courseatlas-backend/internal/library"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

// TransferHandler serves whole-library export and import.
type TransferHandler struct {
	log   *logger.Logger
	store *library.Store
}

func NewTransferHandler(log *logger.Logger, store *library.Store) *TransferHandler {
	return &TransferHandler{
		log:   log.With("handler", "TransferHandler"),
		store: store,
	}
}

func (h *TransferHandler) Export(c *gin.Context) {
	doc, err := h.store.Export(c.Request.Context())
	if err != nil {
		h.log.Error("Export failed", "error", err)
		response.RespondFromError(c, "export_failed", err)
		return
	}
	response.RespondOK(c, doc)
}

func (h *TransferHandler) Import(c *gin.Context) {
	var doc types.ExportDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.store.Import(c.Request.Context(), &doc); err != nil {
		h.log.Error("Import failed", "error", err)
		response.RespondFromError(c, "import_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"imported": true, "courses": len(doc.Courses)})
}
