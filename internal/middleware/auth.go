// Package middleware contains reusable HTTP middleware for the SCIM
// surface: bearer-secret authentication and redis-backed rate limiting.
package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/identikit/scim-bridge/internal/scim"
)

// AuthConfig carries the credentials the bearer check accepts. SecretHash,
// when set, is a bcrypt digest and takes precedence over the plaintext
// Secret for static comparison; Secret additionally acts as the HS256 key
// for signed bearer tokens.
type AuthConfig struct {
	Secret     string
	SecretHash string
}

// BearerSecret authenticates every request before any body parsing
// happens. The bearer value is accepted raw or base64-encoded (IdPs
// commonly encode the configured secret), compared in constant time
// against the shared secret or its bcrypt hash. As a third form, an HS256
// JWT signed with the shared secret passes, which lets clients rotate
// expiring tokens without reconfiguring the bridge. Anything else is a 401
// SCIM error.
func BearerSecret(cfg AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c)
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			if raw == "" {
				return unauthorized(c)
			}

			if matchesSecret(cfg, raw) {
				return next(c)
			}
			if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil && matchesSecret(cfg, string(decoded)) {
				return next(c)
			}
			if cfg.Secret != "" && validSignedToken(raw, cfg.Secret) {
				return next(c)
			}
			return unauthorized(c)
		}
	}
}

// matchesSecret compares a candidate credential against the configured
// secret. The bcrypt path is constant time by construction; the plaintext
// path uses subtle to avoid a timing side channel.
func matchesSecret(cfg AuthConfig, candidate string) bool {
	if cfg.SecretHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.SecretHash), []byte(candidate)) == nil
	}
	if cfg.Secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cfg.Secret), []byte(candidate)) == 1
}

// validSignedToken reports whether raw is a valid HS256 token signed with
// the shared secret. Non-HMAC algorithms are rejected outright.
func validSignedToken(raw, secret string) bool {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	return err == nil && tok.Valid
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, scim.ContentType)
	return c.JSON(http.StatusUnauthorized, scim.NewError(http.StatusUnauthorized, "Unauthorized"))
}
