package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lymphly/vps-ai-bridge/internal/services"
)

// AuthMode is reported by the health endpoint.
const AuthMode = "bearer"

// BearerAuth returns middleware that requires "Authorization: Bearer <secret>".
// The scheme is matched case-insensitively.
func BearerAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortWithError(c, services.AuthError("authorization header required"))
			return
		}

		// Expect "Bearer <token>" format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, services.AuthError("invalid authorization format"))
			return
		}

		if !TokensEqual(strings.TrimSpace(parts[1]), secret) {
			AbortWithError(c, services.AuthError("invalid token"))
			return
		}

		c.Next()
	}
}

// TokensEqual compares provided against secret in time independent of where
// they differ. Both are hashed to fixed-length digests first, so a length
// mismatch costs the same as a content mismatch; the explicit length check
// keeps distinct-length inputs unequal.
func TokensEqual(provided, secret string) bool {
	if secret == "" {
		return false
	}
	a := sha256.Sum256([]byte(provided))
	b := sha256.Sum256([]byte(secret))

	sameDigest := subtle.ConstantTimeCompare(a[:], b[:])
	sameLength := subtle.ConstantTimeEq(int32(len(provided)), int32(len(secret)))
	return sameDigest&sameLength == 1
}

// AbortWithError writes the uniform {error} body for err and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(services.StatusFor(err), gin.H{"error": services.PublicMessage(err)})
}

// AbortWithStatus writes {error: message} with an explicit status.
func AbortWithStatus(c *gin.Context, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
