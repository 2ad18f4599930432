package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	"github.com/xambitlan/disclosure/internal/audit/http/dto"
	usecaseMocks "github.com/xambitlan/disclosure/internal/audit/usecase/mocks"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
	identityHTTP "github.com/xambitlan/disclosure/internal/identity/http"
)

const actor = "0xclient"

func setupRouter(
	t *testing.T,
	authenticated bool,
) (*gin.Engine, *usecaseMocks.MockAuditUseCase, *usecaseMocks.MockReadAuthorizer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	useCase := &usecaseMocks.MockAuditUseCase{}
	authorizer := &usecaseMocks.MockReadAuthorizer{}
	handler := NewAuditHandler(useCase, authorizer, slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if authenticated {
			ctx := identityHTTP.WithIdentity(c.Request.Context(), &identityDomain.Identity{ID: actor})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	router.GET("/v1/audit/:resourceType/:resourceId", handler.ListHandler)
	router.GET("/v1/audit/:resourceType/:resourceId/verify", handler.VerifyHandler)

	return router, useCase, authorizer
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestAuditHandler_ListHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, useCase, authorizer := setupRouter(t, true)

		entry := &auditDomain.AuditEntry{
			ID:           uuid.Must(uuid.NewV7()),
			UserID:       actor,
			Action:       auditDomain.ActionRevealRequest,
			ResourceType: auditDomain.ResourceRevealRequest,
			ResourceID:   "req-1",
			Timestamp:    time.Now().UTC(),
			Sequence:     1,
			PreviousHash: auditDomain.GenesisHash,
			ChainHash:    "ab",
		}
		authorizer.On("CanReadAudit", mock.Anything, actor, "reveal_request", "req-1").Return(nil).Once()
		useCase.On("List", mock.Anything, "reveal_request", "req-1", 0, 10).
			Return([]*auditDomain.AuditEntry{entry}, nil).Once()

		w := get(router, "/v1/audit/reveal_request/req-1?limit=10")

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ListAuditEntriesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		assert.Equal(t, "REVEAL_REQUEST", response.Data[0].Action)
		assert.Equal(t, int64(1), response.Data[0].Sequence)
		useCase.AssertExpectations(t)
	})

	t.Run("Forbidden", func(t *testing.T) {
		router, useCase, authorizer := setupRouter(t, true)
		authorizer.On("CanReadAudit", mock.Anything, actor, "contact", "0xother").
			Return(apperrors.Wrap(apperrors.ErrForbidden, "not owner")).Once()

		w := get(router, "/v1/audit/contact/0xother")

		assert.Equal(t, http.StatusForbidden, w.Code)
		useCase.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		router, _, authorizer := setupRouter(t, false)

		w := get(router, "/v1/audit/reveal_request/req-1")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		authorizer.AssertNotCalled(t, "CanReadAudit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BadPagination", func(t *testing.T) {
		router, _, authorizer := setupRouter(t, true)
		authorizer.On("CanReadAudit", mock.Anything, actor, "reveal_request", "req-1").Return(nil).Once()

		w := get(router, "/v1/audit/reveal_request/req-1?limit=1000")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuditHandler_VerifyHandler(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		router, useCase, authorizer := setupRouter(t, true)
		authorizer.On("CanReadAudit", mock.Anything, actor, "reveal_request", "req-1").Return(nil).Once()
		useCase.On("Verify", mock.Anything, "reveal_request", "req-1").Return(&auditDomain.ChainReport{
			ResourceType:      "reveal_request",
			ResourceID:        "req-1",
			Length:            3,
			Valid:             true,
			FirstInvalidIndex: -1,
		}, nil).Once()

		w := get(router, "/v1/audit/reveal_request/req-1/verify")

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ChainReportResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Valid)
		assert.Equal(t, 3, response.Length)
		assert.Nil(t, response.FirstInvalidIndex)
	})

	t.Run("Tampered", func(t *testing.T) {
		router, useCase, authorizer := setupRouter(t, true)
		authorizer.On("CanReadAudit", mock.Anything, actor, "reveal_request", "req-1").Return(nil).Once()
		useCase.On("Verify", mock.Anything, "reveal_request", "req-1").Return(&auditDomain.ChainReport{
			Length:            3,
			FirstInvalidIndex: 1,
		}, nil).Once()

		w := get(router, "/v1/audit/reveal_request/req-1/verify")

		var response dto.ChainReportResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.Valid)
		require.NotNil(t, response.FirstInvalidIndex)
		assert.Equal(t, 1, *response.FirstInvalidIndex)
	})

	t.Run("NoChain", func(t *testing.T) {
		router, useCase, authorizer := setupRouter(t, true)
		authorizer.On("CanReadAudit", mock.Anything, actor, "reveal_request", "req-9").Return(nil).Once()
		useCase.On("Verify", mock.Anything, "reveal_request", "req-9").Return(nil, auditDomain.ErrChainNotFound).Once()

		w := get(router, "/v1/audit/reveal_request/req-9/verify")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
