// Package http provides HTTP handlers for reading and verifying audit chains.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xambitlan/disclosure/internal/audit/http/dto"
	auditUseCase "github.com/xambitlan/disclosure/internal/audit/usecase"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
	"github.com/xambitlan/disclosure/internal/httputil"
	identityHTTP "github.com/xambitlan/disclosure/internal/identity/http"
)

// AuditHandler exposes per-resource audit chains to the identities allowed to read them.
type AuditHandler struct {
	useCase    auditUseCase.AuditUseCase
	authorizer auditUseCase.ReadAuthorizer
	logger     *slog.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(
	useCase auditUseCase.AuditUseCase,
	authorizer auditUseCase.ReadAuthorizer,
	logger *slog.Logger,
) *AuditHandler {
	return &AuditHandler{
		useCase:    useCase,
		authorizer: authorizer,
		logger:     logger,
	}
}

// ListHandler returns a page of a resource's chain ordered by sequence.
// GET /v1/audit/:resourceType/:resourceId?offset=0&limit=50
func (h *AuditHandler) ListHandler(c *gin.Context) {
	resourceType, resourceID, ok := h.authorize(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	entries, err := h.useCase.List(c.Request.Context(), resourceType, resourceID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEntriesToListResponse(entries))
}

// VerifyHandler recomputes a resource's chain.
// GET /v1/audit/:resourceType/:resourceId/verify
func (h *AuditHandler) VerifyHandler(c *gin.Context) {
	resourceType, resourceID, ok := h.authorize(c)
	if !ok {
		return
	}

	report, err := h.useCase.Verify(c.Request.Context(), resourceType, resourceID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapChainReportToResponse(report))
}

func (h *AuditHandler) authorize(c *gin.Context) (string, string, bool) {
	identity, ok := identityHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return "", "", false
	}

	resourceType := c.Param("resourceType")
	resourceID := c.Param("resourceId")

	err := h.authorizer.CanReadAudit(c.Request.Context(), identity.ID, resourceType, resourceID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return "", "", false
	}
	return resourceType, resourceID, true
}
