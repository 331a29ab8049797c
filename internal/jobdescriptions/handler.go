package jobdescriptions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-scanner/internal/shared/server/middleware"
	"resume-scanner/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job description routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/job-descriptions", h.list)
	rg.POST("/job-descriptions", h.create)
	rg.GET("/job-descriptions/:id", h.get)
	rg.DELETE("/job-descriptions/:id", h.delete)
}

type createRequest struct {
	Title   string `json:"title" form:"title"`
	Company string `json:"company" form:"company"`
	Content string `json:"content" form:"content"`
}

func (h *Handler) list(c *gin.Context) {
	jds, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "job_descriptions": jds})
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	jd, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req.Title, req.Company, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"success":         true,
		"message":         "Job description created successfully",
		"job_description": jd,
	})
}

func (h *Handler) get(c *gin.Context) {
	jd, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "job_description": jd})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Job description deleted successfully")
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Job description not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Title, company and content are required", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}
