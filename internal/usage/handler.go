package usage

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-scanner/internal/shared/server/middleware"
	"resume-scanner/internal/shared/server/respond"
)

// Handler exposes usage endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches usage routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.getUsage)
}

// RegisterDevRoutes attaches dev-only usage routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/usage/reset", h.resetUsage)
}

// AccountFromContext builds the quota account for the authenticated caller.
func AccountFromContext(c *gin.Context) Account {
	return Account{
		UserID: middleware.UserIDFromContext(c),
		Email:  middleware.UserEmailFromContext(c),
	}
}

// WriteError answers with 429 for ErrLimitReached and 500 otherwise.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrLimitReached):
		respond.Error(c, http.StatusTooManyRequests, "limit_reached", LimitReachedMessage, nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch usage", nil)
	}
}

func (h *Handler) getUsage(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), AccountFromContext(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, u)
}

func (h *Handler) resetUsage(c *gin.Context) {
	u, err := h.Svc.Reset(c.Request.Context(), AccountFromContext(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, u)
}
