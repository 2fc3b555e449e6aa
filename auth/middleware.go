// Package auth propagates the already-authenticated caller identity into the
// request context. Tokens are minted by the surrounding platform; this
// package only verifies the HMAC signature and lifts the subject claim out.
// It performs no login, credential, or session handling.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/getgatekit/gatekit/guard"
)

type actorKey struct{}

// ActorFromContext returns the authenticated caller's account id, or "".
func ActorFromContext(ctx context.Context) string {
	id, _ := ctx.Value(actorKey{}).(string)
	return id
}

// Middleware validates bearer tokens and exposes the caller account id both
// on the echo context (for the guard) and the request context (for audit
// attribution).
type Middleware struct {
	secret []byte
	log    *zap.Logger
}

// NewMiddleware creates an auth Middleware verifying HS256 tokens with secret.
func NewMiddleware(secret []byte, log *zap.Logger) *Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return &Middleware{secret: secret, log: log}
}

// Authenticate is an echo middleware requiring a valid bearer token with a
// non-empty subject claim.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == "" || raw == header {
			return echo.NewHTTPError(http.StatusUnauthorized, "bearer token required")
		}

		accountID, err := m.subject(raw)
		if err != nil {
			m.log.Debug("caller token rejected", zap.Error(err))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set(guard.ContextKeyAccountID, accountID)
		req := c.Request()
		c.SetRequest(req.WithContext(context.WithValue(req.Context(), actorKey{}, accountID)))
		return next(c)
	}
}

func (m *Middleware) subject(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}
