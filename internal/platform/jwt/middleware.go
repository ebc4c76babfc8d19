package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"passvault/internal/api"
)

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "userID"

// ErrMalformedHeader is returned when Authorization is not "Bearer <token>".
var ErrMalformedHeader = errors.New("malformed authorization header")

// ErrMissingHeader is returned when no Authorization header is sent.
var ErrMissingHeader = errors.New("missing authorization header")

// UserResolver confirms that a token's subject still exists.
// Following Go convention: interfaces are defined by the consumer.
type UserResolver interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// TokenVerifier validates a raw token and yields its user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthRequired returns a gin middleware that rejects requests without a valid
// bearer token and re-resolves the caller from the user store on every call,
// so tokens of deleted accounts stop working immediately.
func AuthRequired(verifier TokenVerifier, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract "Bearer <token>"
		tokenStr, err := ParseBearer(c.GetHeader("Authorization"))
		if err != nil {
			reject(c, err)
			return
		}

		// 2. Verify signature, expiry and payload shape
		userID, err := verifier.Verify(tokenStr)
		if err != nil {
			reject(c, err)
			return
		}

		// 3. Make sure the account still exists
		ok, err := users.UserExists(c.Request.Context(), userID)
		if err != nil {
			slog.Error("auth user lookup failed", "error", err, "user_id", userID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
			return
		}
		if !ok {
			reject(c, errors.New("user no longer exists"))
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// ParseBearer splits an Authorization header into exactly two space
// separated parts and returns the token when the scheme is "Bearer"
// (case-insensitive).
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", ErrMissingHeader
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}

// UserID returns the id set by AuthRequired.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func reject(c *gin.Context, reason error) {
	slog.Warn("request rejected by auth gate", "reason", reason.Error(), "remote_addr", c.ClientIP(), "path", c.FullPath())
	c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: unauthorizedMessage(reason)})
}

func unauthorizedMessage(reason error) string {
	switch {
	case errors.Is(reason, ErrMissingHeader):
		return "missing bearer token"
	case errors.Is(reason, ErrMalformedHeader):
		return "malformed bearer token"
	case errors.Is(reason, ErrExpiredToken):
		return "token expired"
	default:
		return "invalid token"
	}
}
