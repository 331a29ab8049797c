package resumes

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-scanner/internal/shared/server/middleware"
	"resume-scanner/internal/shared/server/respond"
	"resume-scanner/internal/usage"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.DELETE("/resumes/:id", h.delete)
	rg.PUT("/resumes/:id/name", h.rename)
	rg.GET("/resumes/:id/improvements", h.improvements)
}

func (h *Handler) upload(c *gin.Context) {
	// Multipart overhead on top of the file itself.
	limit := h.Svc.maxFileSize() + 1<<20
	if c.Request.ContentLength > limit {
		h.writeError(c, ErrFileTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(c, ErrFileTooLarge)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	res, err := h.Svc.Upload(c.Request.Context(), usage.AccountFromContext(c), fileHeader.Filename, file)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"success":     true,
		"message":     "Resume uploaded successfully",
		"resume_id":   res.ResumeID,
		"filename":    res.Filename,
		"ats_score":   res.ATSScore,
		"file_size":   res.FileSize,
		"feedback":    res.Feedback,
		"strengths":   res.Strengths,
		"weaknesses":  res.Weaknesses,
		"suggestions": res.Suggestions,
		"scans_left":  res.ScansLeft,
		"mock":        res.Mock,
	})
}

func (h *Handler) list(c *gin.Context) {
	scans, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	views := make([]View, 0, len(scans))
	for _, s := range scans {
		views = append(views, s.View())
	}
	respond.OK(c, gin.H{"success": true, "resumes": views})
}

func (h *Handler) get(c *gin.Context) {
	scan, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "resume": scan.View()})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Resume deleted successfully")
}

type renameRequest struct {
	NewName string `json:"new_name" form:"new_name"`
}

func (h *Handler) rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	scan, err := h.Svc.Rename(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.NewName)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "message": "Resume name updated successfully", "resume": scan.View()})
}

func (h *Handler) improvements(c *gin.Context) {
	id := c.Param("id")
	res, err := h.Svc.Improvements(c.Request.Context(), middleware.UserIDFromContext(c), id, c.DefaultQuery("type", "comprehensive"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "resume_id": id, "improvements": res})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usage.ErrLimitReached):
		usage.WriteError(c, err)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
	case errors.Is(err, ErrInvalidFile):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Only PDF or DOCX files are allowed", nil)
	case errors.Is(err, ErrFileTooLarge):
		respond.Error(c, http.StatusBadRequest, "validation_error", fmt.Sprintf("File size must be less than %dMB.", h.Svc.maxFileSize()>>20), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "new name is required", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}
