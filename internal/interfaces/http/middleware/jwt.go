package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	ActorKey      = "actor"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

var errMissingToken = errors.New("missing bearer token")

// Authenticator resolves a bearer token into the acting user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity.Actor, *auth.Claims, error)
}

// JWTAuth requires a valid, unrevoked bearer token and puts the actor on
// both the gin context and the request context
func JWTAuth(authenticator Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			rejectAuth(c, log, errMissingToken, "Missing authorization header")
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			rejectAuth(c, log, errMissingToken, "Invalid authorization header format")
			return
		}

		actor, claims, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			rejectAuth(c, log, err, "Token validation failed")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(ActorKey, actor)
		c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), actor.UserID.String(), actor.Role.String()))
		c.Next()
	}
}

func rejectAuth(c *gin.Context, log *zap.Logger, err error, message string) {
	if log != nil {
		log.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code, text := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, text = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, text = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrTokenNotYetValid):
		code, text = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	Abort(c, http.StatusUnauthorized, dto.NewHTTPError(shared.KindUnauthorized, code, text))
}

// GetJWTClaims retrieves the validated claims, nil on public routes
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetActor retrieves the authenticated actor, the zero Actor when absent
func GetActor(c *gin.Context) identity.Actor {
	if v, ok := c.Get(ActorKey); ok {
		if actor, ok := v.(identity.Actor); ok {
			return actor
		}
	}
	return identity.Actor{}
}
