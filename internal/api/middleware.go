package api

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/observability"
	"alcyxob/coach-plans/internal/service"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ContextIdentityKey holds the resolved domain.Identity for the request.
const ContextIdentityKey = "identity"

// AuthMiddleware verifies the bearer token, then resolves the caller's role
// from their profiles. The role is never taken from the token itself.
func AuthMiddleware(authService service.AuthService, resolver service.IdentityResolver, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, service.KindUnauthenticated, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, service.KindUnauthenticated, "Authorization header format must be Bearer {token}")
			return
		}

		userID, err := authService.ParseToken(parts[1])
		if err != nil {
			respondError(c, logger, err)
			c.Abort()
			return
		}

		identity, err := resolver.ResolveRole(c.Request.Context(), userID)
		if err != nil {
			respondError(c, logger, err)
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// MetricsMiddleware records request counts and latency by route pattern.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		observability.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// identityFromContext returns the caller. Routes outside AuthMiddleware get
// the zero Identity, which every service rejects as unauthenticated.
func identityFromContext(c *gin.Context) domain.Identity {
	raw, ok := c.Get(ContextIdentityKey)
	if !ok {
		return domain.Identity{}
	}
	identity, _ := raw.(domain.Identity)
	return identity
}
