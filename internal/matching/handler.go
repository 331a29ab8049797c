package matching

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-scanner/internal/analysis"
	"resume-scanner/internal/jobdescriptions"
	"resume-scanner/internal/resumes"
	"resume-scanner/internal/shared/server/respond"
	"resume-scanner/internal/usage"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the AI routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/compare", h.compare)
	rg.POST("/cover-letter", h.coverLetter)
	rg.POST("/cover-letter/regenerate", h.regenerateCoverLetter)
	rg.GET("/cover-letter/download/:format", h.download)
	rg.POST("/improve", h.improve)
}

type compareRequest struct {
	ResumeID  string `json:"resume_id" form:"resume_id"`
	JDID      string `json:"jd_id" form:"jd_id"`
	JDTitle   string `json:"jd_title" form:"jd_title"`
	JDCompany string `json:"jd_company" form:"jd_company"`
	JDContent string `json:"jd_content" form:"jd_content"`
}

type coverLetterRequest struct {
	ResumeID            string `json:"resume_id" form:"resume_id"`
	JDID                string `json:"jd_id" form:"jd_id"`
	YourName            string `json:"your_name" form:"your_name"`
	YourEmail           string `json:"your_email" form:"your_email"`
	YourPhone           string `json:"your_phone" form:"your_phone"`
	IncludeAchievements bool   `json:"include_achievements" form:"include_achievements"`
	EmphasizeSkills     bool   `json:"emphasize_skills" form:"emphasize_skills"`
	AddPassion          bool   `json:"add_passion" form:"add_passion"`
	ProfessionalTone    bool   `json:"professional_tone" form:"professional_tone"`
}

func (r coverLetterRequest) toService() CoverLetterRequest {
	return CoverLetterRequest{
		ResumeID: r.ResumeID,
		JDID:     r.JDID,
		Name:     r.YourName,
		Email:    r.YourEmail,
		Phone:    r.YourPhone,
		Options: analysis.CoverLetterOptions{
			IncludeAchievements: r.IncludeAchievements,
			EmphasizeSkills:     r.EmphasizeSkills,
			AddPassion:          r.AddPassion,
			ProfessionalTone:    r.ProfessionalTone,
		},
	}
}

type improveRequest struct {
	ResumeID        string `json:"resume_id" form:"resume_id"`
	ImprovementType string `json:"improvement_type" form:"improvement_type"`
}

func (h *Handler) compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBind(&req); err != nil || req.ResumeID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume_id is required", nil)
		return
	}
	res, err := h.Svc.Compare(c.Request.Context(), usage.AccountFromContext(c), CompareRequest{
		ResumeID: req.ResumeID,
		JDID:     req.JDID,
		Title:    req.JDTitle,
		Company:  req.JDCompany,
		Content:  req.JDContent,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "analysis_results": res})
}

func (h *Handler) coverLetter(c *gin.Context) {
	var req coverLetterRequest
	if err := c.ShouldBind(&req); err != nil || req.ResumeID == "" || req.JDID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume_id and jd_id are required", nil)
		return
	}
	letter, err := h.Svc.CoverLetter(c.Request.Context(), usage.AccountFromContext(c), req.toService())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "cover_letter": letter})
}

func (h *Handler) regenerateCoverLetter(c *gin.Context) {
	var req coverLetterRequest
	if err := c.ShouldBind(&req); err != nil || req.ResumeID == "" || req.JDID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume_id and jd_id are required", nil)
		return
	}
	letter, err := h.Svc.RegenerateCoverLetter(c.Request.Context(), usage.AccountFromContext(c), req.toService())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "cover_letter": letter})
}

func (h *Handler) improve(c *gin.Context) {
	var req improveRequest
	if err := c.ShouldBind(&req); err != nil || req.ResumeID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume_id is required", nil)
		return
	}
	res, err := h.Svc.Improve(c.Request.Context(), usage.AccountFromContext(c), req.ResumeID, req.ImprovementType)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "improvement_results": res})
}

func (h *Handler) download(c *gin.Context) {
	err := DownloadCoverLetter(c.Param("format"))
	switch {
	case errors.Is(err, ErrNotImplemented):
		respond.Error(c, http.StatusNotImplemented, "not_implemented", err.Error(), nil)
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid format", nil)
	}
}

func writeError(c *gin.Context, err error) {
	var short *ShortJDError
	switch {
	case errors.Is(err, usage.ErrLimitReached):
		usage.WriteError(c, err)
	case errors.As(err, &short):
		respond.Error(c, http.StatusBadRequest, "validation_error", short.Error(), gin.H{"length": short.Length})
	case errors.Is(err, ErrAdhocIncomplete):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Please provide job title, company, and content", nil)
	case errors.Is(err, ErrSourceNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Resume or job description not found", nil)
	case errors.Is(err, resumes.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
	case errors.Is(err, jobdescriptions.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Job description not found", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}
