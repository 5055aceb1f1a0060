package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/http/response"
	"github.com/courseatlas/courseatlas-backend/internal/library"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type CourseHandler struct {
	log   *logger.Logger
	store *library.Store
}

func NewCourseHandler(log *logger.Logger, store *library.Store) *CourseHandler {
	return &CourseHandler{
		log:   log.With("handler", "CourseHandler"),
		store: store,
	}
}

func (h *CourseHandler) Create(c *gin.Context) {
	var course types.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, err := h.store.AddCourse(c.Request.Context(), &course)
	if err != nil {
		h.log.Error("Create course failed", "error", err)
		response.RespondFromError(c, "create_course_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"course": created})
}

func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.store.ListCourses(c.Request.Context())
	if err != nil {
		h.log.Error("List courses failed", "error", err)
		response.RespondFromError(c, "list_courses_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.store.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, "get_course_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) Update(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	course, err := h.store.UpdateCourse(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		response.RespondFromError(c, "update_course_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		h.log.Error("Delete course failed", "error", err, "course_id", c.Param("id"))
		response.RespondFromError(c, "delete_course_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func (h *CourseHandler) TouchAccess(c *gin.Context) {
	if err := h.store.TouchCourseAccess(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondFromError(c, "touch_course_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"touched": true})
}

type reorderRequest struct {
	OrderedIDs []string `json:"orderedIds" binding:"required"`
}

func (h *CourseHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.store.ReorderCourses(c.Request.Context(), req.OrderedIDs); err != nil {
		response.RespondFromError(c, "reorder_courses_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"reordered": true})
}

func (h *CourseHandler) Ingest(c *gin.Context) {
	var structure types.CourseStructure
	if err := c.ShouldBindJSON(&structure); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	course, err := h.store.IngestStructure(c.Request.Context(), structure)
	if err != nil {
		h.log.Error("Ingest failed", "error", err)
		response.RespondFromError(c, "ingest_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}
