package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hms/backend/internal/infrastructure/auth"
	"github.com/hms/backend/internal/infrastructure/logger"
)

// Context keys under which the auth middleware stores token claims.
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig configures the authentication middleware.
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// SkipPaths lists exact paths served without authentication.
	SkipPaths []string
	// SkipPathPrefixes lists path prefixes served without authentication.
	SkipPathPrefixes []string
	// OnError, when set, replaces the default 401 response.
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// DefaultJWTConfig leaves health probes and API docs open and protects
// everything else.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api-docs",
		},
	}
}

// JWTAuthMiddleware authenticates requests using the default configuration.
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig authenticates every request whose path is not
// in the skip lists, storing validated claims on both the gin context and the
// request context so downstream handlers and loggers see the user identity.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pathSkipsAuth(cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenString, message := bearerToken(c)
		if message != "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, message)
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		storeClaims(c, claims)

		ctx := c.Request.Context()
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("user_id", claims.UserID),
				zap.String("username", claims.Username),
			)
		}

		c.Next()
	}
}

func pathSkipsAuth(cfg JWTMiddlewareConfig, path string) bool {
	for _, skipPath := range cfg.SkipPaths {
		if path == skipPath {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// bearerToken extracts the token from the Authorization header. A non-empty
// message describes why extraction failed.
func bearerToken(c *gin.Context) (token, message string) {
	authHeader := c.GetHeader(AuthHeaderKey)
	switch {
	case authHeader == "":
		return "", "Missing authorization header"
	case !strings.HasPrefix(authHeader, BearerPrefix):
		return "", "Invalid authorization header format"
	}

	token = strings.TrimPrefix(authHeader, BearerPrefix)
	if token == "" {
		return "", "Missing token"
	}
	return token, ""
}

func storeClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTUsernameKey, claims.Username)
	c.Set(JWTRoleKey, claims.Role)
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode, errorMessage := authErrorResponse(err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

func authErrorResponse(err error) (code, message string) {
	switch err {
	case auth.ErrExpiredToken:
		return "TOKEN_EXPIRED", "Token has expired"
	case auth.ErrInvalidToken:
		return "INVALID_TOKEN", "Invalid token"
	case auth.ErrTokenNotYetValid:
		return "TOKEN_NOT_VALID", "Token is not yet valid"
	case auth.ErrInvalidClaims, auth.ErrMissingUserID:
		return "INVALID_TOKEN", "Invalid token claims"
	}
	return "UNAUTHORIZED", "Authentication required"
}

// GetJWTClaims returns the validated claims, or nil on unauthenticated
// requests.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// MustGetJWTClaims returns the validated claims and panics when the request
// was not authenticated. Only for routes behind JWTAuthMiddleware.
func MustGetJWTClaims(c *gin.Context) *auth.Claims {
	claims := GetJWTClaims(c)
	if claims == nil {
		panic("jwt claims not found in context")
	}
	return claims
}

// GetJWTUserID returns the authenticated user id, or "" when absent.
func GetJWTUserID(c *gin.Context) string {
	return jwtContextString(c, JWTUserIDKey)
}

// GetJWTUsername returns the authenticated username, or "" when absent.
func GetJWTUsername(c *gin.Context) string {
	return jwtContextString(c, JWTUsernameKey)
}

// GetJWTRole returns the authenticated role, or "" when absent.
func GetJWTRole(c *gin.Context) string {
	return jwtContextString(c, JWTRoleKey)
}

func jwtContextString(c *gin.Context, key string) string {
	if value, exists := c.Get(key); exists {
		if s, ok := value.(string); ok {
			return s
		}
	}
	return ""
}

// OptionalJWTAuthMiddleware extracts claims when a valid token is present but
// never rejects the request. Invalid tokens are treated as anonymous.
func OptionalJWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, message := bearerToken(c)
		if message == "" {
			if claims, err := jwtService.ValidateAccessToken(token); err == nil {
				storeClaims(c, claims)
			}
		}
		c.Next()
	}
}
