// Package guard implements the entity access guard: an Echo middleware that
// turns a declared Policy plus the call context into an allow/deny decision.
//
// The guard knows nothing about the entities it protects. It reads the
// caller's account id from the request context, the entity id from the route
// parameters, and asks the AccountLink store whether the caller holds a
// sufficient role. Any ambiguity, missing data, or store failure resolves to
// deny; the guard can never fail open.
package guard

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/getgatekit/gatekit/metrics"
)

// ContextKeyAccountID is the echo context key under which the authenticated
// caller's account id is expected. The auth middleware sets it.
const ContextKeyAccountID = "account_id"

// Route parameter names tried when extracting the entity id, in order.
const (
	ParamEntityID = "entityId"
	ParamID       = "id"
)

// Deny reasons, as reported in logs and metrics.
const (
	reasonOK           = "ok"
	reasonNoCaller     = "no_caller"
	reasonNoEntityID   = "no_entity_id"
	reasonLookupFailed = "lookup_failed"
	reasonInsufficient = "insufficient_role"
)

// AccessChecker answers the single question the guard asks. The link
// package's Manager satisfies it.
type AccessChecker interface {
	HasAccess(ctx context.Context, accountID, entityTable, entityID, requiredRole string) (bool, error)
}

// Middleware evaluates declared policies against incoming calls. Each call is
// checked independently with exactly one store read, no shared mutable state,
// and no caching; concurrent evaluations never block one another.
type Middleware struct {
	checker  AccessChecker
	registry *Registry
	log      *zap.Logger
}

// NewMiddleware creates a guard Middleware. registry may be nil when only
// Require is used.
func NewMiddleware(checker AccessChecker, registry *Registry, log *zap.Logger) *Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return &Middleware{checker: checker, registry: registry, log: log}
}

// Protect guards an operation by the policy declared for it in the registry.
// If no policy is declared the handler runs unguarded.
func (m *Middleware) Protect(operation string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			policy, ok := m.registry.Lookup(operation)
			if !ok {
				return next(c)
			}
			return m.check(c, operation, policy, next)
		}
	}
}

// Require guards a handler with an explicit policy, bypassing the registry.
func (m *Middleware) Require(policy Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return m.check(c, c.Path(), policy, next)
		}
	}
}

func (m *Middleware) check(c echo.Context, operation string, policy Policy, next echo.HandlerFunc) error {
	start := time.Now()
	defer func() {
		metrics.GuardCheckDuration.Observe(time.Since(start).Seconds())
	}()

	accountID, _ := c.Get(ContextKeyAccountID).(string)
	if accountID == "" {
		return m.deny(c, operation, reasonNoCaller)
	}

	entityID := c.Param(ParamEntityID)
	if entityID == "" {
		entityID = c.Param(ParamID)
	}
	if entityID == "" {
		return m.deny(c, operation, reasonNoEntityID)
	}

	allowed, err := m.checker.HasAccess(c.Request().Context(), accountID, policy.EntityTable, entityID, policy.RequiredRole)
	if err != nil {
		// Fail closed: a transient store error, timeout or cancellation
		// must never grant access.
		m.log.Warn("access check failed, denying",
			zap.Error(err),
			zap.String("operation", operation),
			zap.String("account_id", accountID),
			zap.String("entity_table", policy.EntityTable),
			zap.String("entity_id", entityID),
		)
		return m.deny(c, operation, reasonLookupFailed)
	}
	if !allowed {
		return m.deny(c, operation, reasonInsufficient)
	}

	metrics.GuardDecisions.WithLabelValues(operation, "allow", reasonOK).Inc()
	return next(c)
}

func (m *Middleware) deny(c echo.Context, operation, reason string) error {
	metrics.GuardDecisions.WithLabelValues(operation, "deny", reason).Inc()
	return echo.NewHTTPError(http.StatusForbidden, "forbidden: entity access denied")
}
