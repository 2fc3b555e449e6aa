// Package api exposes the gatekit REST surface over Echo: account links and
// the has-access check, the supporting account / identity-provider /
// external-identity registries, and the audit trail.
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/getgatekit/gatekit/account"
	"github.com/getgatekit/gatekit/audit"
	"github.com/getgatekit/gatekit/domain"
	"github.com/getgatekit/gatekit/federation"
	"github.com/getgatekit/gatekit/link"
	"github.com/getgatekit/gatekit/provider"
)

type Handler struct {
	links      *link.Manager
	accounts   *account.Manager
	providers  *provider.Manager
	federation *federation.Manager
	auditor    audit.Store
	log        *zap.Logger
}

func NewHandler(links *link.Manager, accounts *account.Manager, providers *provider.Manager, fed *federation.Manager, auditor audit.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		links:      links,
		accounts:   accounts,
		providers:  providers,
		federation: fed,
		auditor:    auditor,
		log:        log,
	}
}

// RegisterRoutes mounts all gatekit routes on the group. The caller decides
// which middlewares (auth, guard) wrap the group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	// Account links and the access check
	g.POST("/account-links", h.HandleGrantLink)
	g.GET("/account-links", h.HandleListLinks)
	g.GET("/account-links/by-account/:accountId", h.HandleListLinksByAccount)
	g.GET("/account-links/by-entity", h.HandleListLinksByEntity)
	g.GET("/account-links/:accountId/:entityTable/:entityId", h.HandleGetLink)
	g.GET("/account-links/:accountId/:entityTable/:entityId/has-access", h.HandleHasAccess)
	g.PATCH("/account-links/:accountId/:entityTable/:entityId/role", h.HandleSetLinkRole)
	g.DELETE("/account-links/:accountId/:entityTable/:entityId", h.HandleRevokeLink)

	// User accounts
	g.POST("/accounts", h.HandleCreateAccount)
	g.GET("/accounts", h.HandleListAccounts)
	g.GET("/accounts/by-email", h.HandleFindAccountByEmail)
	g.GET("/accounts/by-username", h.HandleFindAccountByUsername)
	g.GET("/accounts/by-subject", h.HandleFindAccountBySubject)
	g.GET("/accounts/:accountId", h.HandleGetAccount)
	g.PATCH("/accounts/:accountId", h.HandleUpdateAccount)
	g.PATCH("/accounts/:accountId/status", h.HandleSetAccountStatus)
	g.POST("/accounts/:accountId/last-login", h.HandleTouchLastLogin)
	g.DELETE("/accounts/:accountId", h.HandleDeleteAccount)

	// Identity providers
	g.POST("/identity-providers", h.HandleCreateProvider)
	g.GET("/identity-providers", h.HandleListProviders)
	g.GET("/identity-providers/by-key/:key", h.HandleGetProviderByKey)
	g.GET("/identity-providers/:id", h.HandleGetProvider)
	g.PATCH("/identity-providers/:id", h.HandleUpdateProvider)
	g.PATCH("/identity-providers/:id/toggle", h.HandleToggleProvider)
	g.DELETE("/identity-providers/:id", h.HandleDeleteProvider)

	// External identities
	g.POST("/external-identities", h.HandleCreateExternalIdentity)
	g.GET("/external-identities", h.HandleListExternalIdentities)
	g.GET("/external-identities/by-entity", h.HandleFindExternalIdentitiesByEntity)
	g.GET("/external-identities/by-provider", h.HandleFindExternalIdentityByProvider)
	g.GET("/external-identities/:id", h.HandleGetExternalIdentity)
	g.PATCH("/external-identities/:id", h.HandleUpdateExternalIdentity)
	g.PATCH("/external-identities/:id/sync-status", h.HandleUpdateSyncStatus)
	g.DELETE("/external-identities/:id", h.HandleDeleteExternalIdentity)

	// Audit trail
	g.GET("/audit-events", h.HandleListAuditEvents)
}

// Error maps domain errors onto HTTP responses with a uniform body shape.
func (h *Handler) Error(c echo.Context, err error) error {
	var code int
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		code = http.StatusConflict
	default:
		code = http.StatusInternalServerError
		h.log.Error("request failed", zap.Error(err), zap.String("path", c.Path()))
	}

	return c.JSON(code, map[string]any{
		"code":  code,
		"error": err.Error(),
	})
}
