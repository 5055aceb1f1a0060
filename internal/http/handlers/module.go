package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/http/response"
	"github.com/courseatlas/courseatlas-backend/internal/library"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type ModuleHandler struct {
	log   *logger.Logger
	store *library.Store
}

func NewModuleHandler(log *logger.Logger, store *library.Store) *ModuleHandler {
	return &ModuleHandler{
		log:   log.With("handler", "ModuleHandler"),
		store: store,
	}
}

func (h *ModuleHandler) Create(c *gin.Context) {
	var module types.Module
	if err := c.ShouldBindJSON(&module); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, err := h.store.AddModule(c.Request.Context(), &module)
	if err != nil {
		response.RespondFromError(c, "create_module_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"module": created})
}

func (h *ModuleHandler) Get(c *gin.Context) {
	module, err := h.store.GetModule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, "get_module_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"module": module})
}

func (h *ModuleHandler) ListByCourse(c *gin.Context) {
	modules, err := h.store.GetModulesByCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, "list_modules_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"modules": modules})
}

func (h *ModuleHandler) Update(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	module, err := h.store.UpdateModule(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		response.RespondFromError(c, "update_module_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"module": module})
}

func (h *ModuleHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteModule(c.Request.Context(), c.Param("id")); err != nil {
		h.log.Error("Delete module failed", "error", err, "module_id", c.Param("id"))
		response.RespondFromError(c, "delete_module_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func (h *ModuleHandler) ReorderWithinCourse(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.store.ReorderModules(c.Request.Context(), c.Param("id"), req.OrderedIDs); err != nil {
		response.RespondFromError(c, "reorder_modules_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"reordered": true})
}
