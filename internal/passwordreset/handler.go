package passwordreset

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-scanner/internal/shared/server/respond"
)

const (
	requestedMessage    = "If an account with that email exists, password reset instructions have been sent."
	deliveryFailMessage = "Failed to send password reset email. Please try again later."
	invalidTokenMessage = "Invalid or expired reset token. Please request a new password reset."
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the public reset routes.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/forgot-password", h.forgotPassword)
	r.POST("/reset-password", h.resetPassword)
	r.GET("/verify-reset", h.verifyToken)
}

type forgotRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req forgotRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "email is required", nil)
		return
	}
	if err := h.Svc.RequestReset(c.Request.Context(), req.Email); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", deliveryFailMessage, nil)
		return
	}
	respond.Message(c, http.StatusOK, requestedMessage)
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "invalid request body", nil)
		return
	}
	err := h.Svc.Reset(c.Request.Context(), req.Token, req.NewPassword, req.ConfirmPassword)
	switch {
	case err == nil:
		respond.Message(c, http.StatusOK, "Password has been reset successfully. You can now log in with your new password.")
	case errors.Is(err, ErrPasswordMismatch):
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Passwords do not match.", nil)
	case errors.Is(err, ErrPasswordTooShort):
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Password must be at least 6 characters long.", nil)
	case errors.Is(err, ErrInvalidToken):
		respond.Error(c, http.StatusBadRequest, "invalid_token", invalidTokenMessage, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to reset password", nil)
	}
}

func (h *Handler) verifyToken(c *gin.Context) {
	_, err := h.Svc.Verify(c.Request.Context(), c.Query("token"))
	switch {
	case err == nil:
		respond.OK(c, gin.H{"success": true, "valid": true, "message": "Token is valid"})
	case errors.Is(err, ErrInvalidToken):
		respond.Error(c, http.StatusBadRequest, "invalid_token", invalidTokenMessage, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to verify token", nil)
	}
}
