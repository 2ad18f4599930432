// Package http provides HTTP handlers for provider contact management.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xambitlan/disclosure/internal/contact/http/dto"
	contactUseCase "github.com/xambitlan/disclosure/internal/contact/usecase"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
	"github.com/xambitlan/disclosure/internal/httputil"
	identityHTTP "github.com/xambitlan/disclosure/internal/identity/http"
	customValidation "github.com/xambitlan/disclosure/internal/validation"
)

// ContactHandler handles HTTP requests for provider contact records.
type ContactHandler struct {
	useCase contactUseCase.ContactUseCase
	logger  *slog.Logger
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(useCase contactUseCase.ContactUseCase, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// SetContactHandler stores the authenticated provider's contact record.
// PUT /v1/contact - Requires an identity session.
func (h *ContactHandler) SetContactHandler(c *gin.Context) {
	identity, ok := identityHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.SetContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	vault, err := h.useCase.SetContact(c.Request.Context(), identity.ID, req.ToRecord())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVaultToResponse(vault))
}

// GetContactHashHandler returns the digest stored for a provider.
// GET /v1/providers/:providerId/contact-hash - Requires an identity session.
func (h *ContactHandler) GetContactHashHandler(c *gin.Context) {
	providerID := c.Param("providerId")

	hash, err := h.useCase.GetContactHash(c.Request.Context(), providerID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ContactHashResponse{
		ProviderID:  providerID,
		ContactHash: hash,
	})
}
