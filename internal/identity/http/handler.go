package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xambitlan/disclosure/internal/httputil"
	"github.com/xambitlan/disclosure/internal/identity/http/dto"
	identityUseCase "github.com/xambitlan/disclosure/internal/identity/usecase"
	customValidation "github.com/xambitlan/disclosure/internal/validation"
)

// IdentityHandler handles the commit-then-reveal identity endpoints.
type IdentityHandler struct {
	useCase identityUseCase.IdentityUseCase
	logger  *slog.Logger
}

// NewIdentityHandler creates a new identity handler.
func NewIdentityHandler(useCase identityUseCase.IdentityUseCase, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// IssueChallengeHandler issues a single-use nonce.
// POST /v1/identity/challenges - No authentication required.
func (h *IdentityHandler) IssueChallengeHandler(c *gin.Context) {
	output, err := h.useCase.IssueChallenge(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapChallengeToResponse(output))
}

// EstablishSessionHandler exchanges a nonce and gateway assertion for a bearer token.
// POST /v1/identity/sessions - No authentication required.
func (h *IdentityHandler) EstablishSessionHandler(c *gin.Context) {
	var req dto.EstablishSessionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.useCase.EstablishSession(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSessionToResponse(output))
}
