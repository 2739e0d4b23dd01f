package http

import (
	"errors"
	"net/http"

	"wavecast/internal/core/domain"
	"wavecast/internal/core/ports"
	"wavecast/internal/infrastructure/monitoring"
	apperrors "wavecast/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService ports.AuthService
	metrics     *monitoring.Collector
	logger      *zap.SugaredLogger
}

func NewAuthHandler(authService ports.AuthService, metrics *monitoring.Collector, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     metrics,
		logger:      logger,
	}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine, limiter gin.HandlerFunc) {
	router.POST("/authenticate", limiter, h.Authenticate)
}

type AuthenticateRequest struct {
	Password string `json:"password" binding:"required,max=128"`
}

// Authenticate exchanges the shared secret for a bearer token. A wrong
// password is a normal outcome, answered 200 with success=false, so the
// client page can re-prompt without special-casing the status code.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req AuthenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	token, err := h.authService.Authenticate(c.Request.Context(), req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrAuthFailed) {
			h.metrics.AuthAttempt(false)
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"message": "Invalid password",
			})
			return
		}
		h.logger.Errorw("token issue failed", "error", err)
		c.Error(apperrors.NewInternalError("failed to issue token"))
		return
	}

	h.metrics.AuthAttempt(true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   string(token),
	})
}
