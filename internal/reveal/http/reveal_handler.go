// Package http provides HTTP handlers for the reveal request lifecycle.
package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/xambitlan/disclosure/internal/errors"
	"github.com/xambitlan/disclosure/internal/httputil"
	identityHTTP "github.com/xambitlan/disclosure/internal/identity/http"
	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
	"github.com/xambitlan/disclosure/internal/reveal/http/dto"
	revealUseCase "github.com/xambitlan/disclosure/internal/reveal/usecase"
	customValidation "github.com/xambitlan/disclosure/internal/validation"
)

// AccessTokenHeader carries the access token on contact reads.
const AccessTokenHeader = "X-Access-Token"

var errMissingAccessToken = apperrors.New("access token is required")

// RevealHandler handles HTTP requests for reveal requests. Every route requires
// an identity session; the identity is passed to the use case explicitly.
type RevealHandler struct {
	useCase revealUseCase.RevealUseCase
	logger  *slog.Logger
}

// NewRevealHandler creates a new reveal handler.
func NewRevealHandler(useCase revealUseCase.RevealUseCase, logger *slog.Logger) *RevealHandler {
	return &RevealHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// CreateHandler opens a reveal request for a service.
// POST /v1/services/:serviceId/reveal-requests
func (h *RevealHandler) CreateHandler(c *gin.Context) {
	identity, ok := identityHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.CreateRevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	request, err := h.useCase.Create(c.Request.Context(), identity.ID, req.ToInput(c.Param("serviceId")))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRevealRequestToResponse(request))
}

// ListHandler lists one side of the caller's reveal requests.
// GET /v1/reveal-requests?role=client|provider&status=PENDING&offset=0&limit=50
func (h *RevealHandler) ListHandler(c *gin.Context) {
	identity, ok := identityHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter := &revealDomain.ListFilter{
		Role:   revealDomain.Role(strings.ToLower(c.DefaultQuery("role", string(revealDomain.RoleClient)))),
		Status: revealDomain.Status(strings.ToUpper(c.Query("status"))),
		Offset: offset,
		Limit:  limit,
	}

	requests, err := h.useCase.List(c.Request.Context(), identity.ID, filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRevealRequestsToListResponse(requests))
}

// GetHandler returns a reveal request to its client or provider.
// GET /v1/reveal-requests/:id
func (h *RevealHandler) GetHandler(c *gin.Context) {
	identity, requestID, ok := h.identityAndID(c)
	if !ok {
		return
	}

	request, err := h.useCase.Get(c.Request.Context(), identity, requestID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRevealRequestToResponse(request))
}

// ConsentHandler records the provider's decision.
// POST /v1/reveal-requests/:id/consent
func (h *RevealHandler) ConsentHandler(c *gin.Context) {
	identity, requestID, ok := h.identityAndID(c)
	if !ok {
		return
	}

	var req dto.ConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	request, err := h.useCase.Consent(c.Request.Context(), identity, requestID, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRevealRequestToResponse(request))
}

// ContactHandler releases the provider's contact to the client holding a valid token.
// GET /v1/reveal-requests/:id/contact with the token in X-Access-Token or ?token=
func (h *RevealHandler) ContactHandler(c *gin.Context) {
	identity, requestID, ok := h.identityAndID(c)
	if !ok {
		return
	}

	token := c.GetHeader(AccessTokenHeader)
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		httputil.HandleValidationErrorGin(c, errMissingAccessToken, h.logger)
		return
	}

	record, err := h.useCase.ResolveContact(c.Request.Context(), identity, requestID, token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapRevealedContactToResponse(requestID.String(), record))
}

func (h *RevealHandler) identityAndID(c *gin.Context) (string, uuid.UUID, bool) {
	identity, ok := identityHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return "", uuid.Nil, false
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, apperrors.New("invalid reveal request id"), h.logger)
		return "", uuid.Nil, false
	}
	return identity.ID, requestID, true
}
