package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditHTTP "github.com/xambitlan/disclosure/internal/audit/http"
	auditMocks "github.com/xambitlan/disclosure/internal/audit/usecase/mocks"
	"github.com/xambitlan/disclosure/internal/config"
	contactHTTP "github.com/xambitlan/disclosure/internal/contact/http"
	contactMocks "github.com/xambitlan/disclosure/internal/contact/usecase/mocks"
	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
	identityHTTP "github.com/xambitlan/disclosure/internal/identity/http"
	identityService "github.com/xambitlan/disclosure/internal/identity/service"
	identityMocks "github.com/xambitlan/disclosure/internal/identity/usecase/mocks"
	"github.com/xambitlan/disclosure/internal/metrics"
	"github.com/xambitlan/disclosure/internal/ratelimit"
	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
	revealHTTP "github.com/xambitlan/disclosure/internal/reveal/http"
	revealMocks "github.com/xambitlan/disclosure/internal/reveal/usecase/mocks"
)

const (
	sessionToken = "session-token"
	callerID     = "0xcaller"
)

type routerFixture struct {
	server   *Server
	identity *identityMocks.MockIdentityUseCase
	reveal   *revealMocks.MockRevealUseCase
}

func newRouterFixture(t *testing.T, cfg *config.Config, deps RouterDeps) *routerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := identityService.NewTokenService()

	identityUseCase := &identityMocks.MockIdentityUseCase{}
	identityUseCase.On("Authenticate", mock.Anything, tokens.HashToken(sessionToken)).
		Return(&identityDomain.Identity{ID: callerID}, nil).Maybe()

	revealUseCase := &revealMocks.MockRevealUseCase{}

	deps.IdentityHandler = identityHTTP.NewIdentityHandler(identityUseCase, logger)
	deps.ContactHandler = contactHTTP.NewContactHandler(&contactMocks.MockContactUseCase{}, logger)
	deps.RevealHandler = revealHTTP.NewRevealHandler(revealUseCase, logger)
	deps.AuditHandler = auditHTTP.NewAuditHandler(
		&auditMocks.MockAuditUseCase{},
		&auditMocks.MockReadAuthorizer{},
		logger,
	)
	deps.IdentityUseCase = identityUseCase
	deps.TokenService = tokens

	server := NewServer(nil, "localhost", 8080, logger)
	server.SetupRouter(cfg, deps)

	return &routerFixture{server: server, identity: identityUseCase, reveal: revealUseCase}
}

func (f *routerFixture) do(method, path, body string, authenticated bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}

	w := httptest.NewRecorder()
	f.server.router.ServeHTTP(w, req)
	return w
}

func TestRouter_RevealRoutesRequireSession(t *testing.T) {
	f := newRouterFixture(t, &config.Config{DBDriver: "memory"}, RouterDeps{})

	w := f.do(http.MethodGet, "/v1/reveal-requests", "", false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	f.reveal.AssertNotCalled(t, "List")
}

func TestRouter_ListRevealRequests(t *testing.T) {
	f := newRouterFixture(t, &config.Config{DBDriver: "memory"}, RouterDeps{})
	f.reveal.On("List", mock.Anything, callerID, mock.MatchedBy(func(filter *revealDomain.ListFilter) bool {
		return filter.Role == revealDomain.RoleProvider
	})).Return([]*revealDomain.RevealRequest{}, nil).Once()

	w := f.do(http.MethodGet, "/v1/reveal-requests?role=provider", "", true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	f.reveal.AssertExpectations(t)
}

func TestRouter_RevealCreationLimit(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.PerHour(1))
	defer limiter.Close()

	f := newRouterFixture(t, &config.Config{DBDriver: "memory"}, RouterDeps{RevealLimiter: limiter})
	f.reveal.On("Create", mock.Anything, callerID, mock.Anything).
		Return(&revealDomain.RevealRequest{ServiceID: "svc-1", Status: revealDomain.StatusPending}, nil).Once()

	body := `{"payment_ref":"pay_1"}`
	first := f.do(http.MethodPost, "/v1/services/svc-1/reveal-requests", body, true)
	second := f.do(http.MethodPost, "/v1/services/svc-1/reveal-requests", body, true)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	f.reveal.AssertNumberOfCalls(t, "Create", 1)
}

func TestRouter_ReadyInMemory(t *testing.T) {
	f := newRouterFixture(t, &config.Config{DBDriver: "memory"}, RouterDeps{})

	w := f.do(http.MethodGet, "/ready", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"memory"`)
}

func TestRouter_NoMetricsEndpoint(t *testing.T) {
	provider, err := metrics.NewProvider("router_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	f := newRouterFixture(t, &config.Config{DBDriver: "memory", MetricsNamespace: "router_test"}, RouterDeps{
		MetricsProvider: provider,
	})

	w := f.do(http.MethodGet, "/metrics", "", false)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
