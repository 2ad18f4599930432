package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xambitlan/disclosure/internal/errors"
	"github.com/xambitlan/disclosure/internal/httputil"
	identityService "github.com/xambitlan/disclosure/internal/identity/service"
	identityUseCase "github.com/xambitlan/disclosure/internal/identity/usecase"
)

// AuthenticationMiddleware resolves the session bearer token in the Authorization
// header to an identity and stores it in the request context.
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer").
// Missing, malformed, unknown and expired tokens all produce 401.
func AuthenticationMiddleware(
	useCase identityUseCase.IdentityUseCase,
	tokenService identityService.TokenService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainToken := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		identity, err := useCase.Authenticate(c.Request.Context(), tokenService.HashToken(plainToken))
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))

		logger.Debug("authentication successful",
			slog.String("identity_id", identity.ID),
			slog.String("session_id", identity.SessionID.String()))

		c.Next()
	}
}
