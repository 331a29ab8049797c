package users

import (
	"errors"
	"fmt"
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

// RegisterRoutes mounts the authenticated profile routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.getProfile)
	rg.PUT("/profile", h.updateProfile)
	rg.PUT("/profile/social", h.updateSocial)
	rg.PUT("/profile/password", h.changePassword)
	rg.GET("/profile/photo", h.photoInfo)
	rg.POST("/profile/photo", h.uploadPhoto)
	rg.DELETE("/profile/photo", h.deletePhoto)
}

// RegisterPublicRoutes mounts the photo route, which needs no session.
func (h *Handler) RegisterPublicRoutes(r gin.IRoutes) {
	r.GET("/profile-photo/:id", h.servePhoto)
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "user": user.View()})
}

func (h *Handler) updateProfile(c *gin.Context) {
	var patch ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "invalid request body", nil)
		return
	}
	user, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.UserIDFromContext(c), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "message": "Profile updated successfully", "user": user.View()})
}

func (h *Handler) updateSocial(c *gin.Context) {
	var patch SocialPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "invalid request body", nil)
		return
	}
	user, err := h.Svc.UpdateSocialLinks(c.Request.Context(), middleware.UserIDFromContext(c), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "message": "Social links updated successfully", "user": user.View()})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "invalid request body", nil)
		return
	}
	err := h.Svc.ChangePassword(c.Request.Context(), middleware.UserIDFromContext(c), req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Password changed successfully")
}

func (h *Handler) photoInfo(c *gin.Context) {
	has, url, err := h.Svc.PhotoInfo(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "has_photo": has, "profile_photo": url})
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "photo is required", nil)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "unable to read photo", nil)
		return
	}
	defer f.Close()

	user, err := h.Svc.UploadPhoto(c.Request.Context(), middleware.UserIDFromContext(c), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), f)
	if errors.Is(err, ErrPhotoTooLarge) {
		respond.Error(c, http.StatusBadRequest, "invalid_input", fmt.Sprintf("File size must be less than %dMB.", h.Svc.photoLimit()>>20), nil)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"success":       true,
		"message":       "Profile photo updated successfully",
		"profile_photo": user.PhotoURL(),
	})
}

func (h *Handler) deletePhoto(c *gin.Context) {
	if err := h.Svc.DeletePhoto(c.Request.Context(), middleware.UserIDFromContext(c)); err != nil {
		writeError(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Profile photo deleted successfully")
}

func (h *Handler) servePhoto(c *gin.Context) {
	photo, err := h.Svc.OpenPhoto(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to load photo", nil)
		return
	}
	if photo.RedirectURL != "" {
		c.Redirect(http.StatusFound, photo.RedirectURL)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, photo.ContentType, photo.Data)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
	case errors.Is(err, ErrWrongPassword):
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Current password is incorrect", nil)
	case errors.Is(err, ErrPasswordMismatch):
		respond.Error(c, http.StatusBadRequest, "invalid_input", "New passwords do not match", nil)
	case errors.Is(err, ErrPasswordTooShort):
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Password must be at least 6 characters long", nil)
	case errors.Is(err, ErrPhotoType):
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Invalid file type. Please upload a JPEG, PNG, GIF, or WebP image.", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "internal server error", nil)
	}
}
