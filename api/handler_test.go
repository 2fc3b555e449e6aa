package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/getgatekit/gatekit/account"
	"github.com/getgatekit/gatekit/auth"
	"github.com/getgatekit/gatekit/federation"
	"github.com/getgatekit/gatekit/gormstore"
	"github.com/getgatekit/gatekit/guard"
	"github.com/getgatekit/gatekit/link"
	"github.com/getgatekit/gatekit/provider"
)

func setupServer(t *testing.T) *echo.Echo {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "gatekit_test.db")
	repo, err := gormstore.NewStorage("sqlite", dbPath, nil)
	if err != nil {
		t.Fatalf("failed to setup repo: %v", err)
	}
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	h := NewHandler(
		link.NewManager(repo, link.WithAuditStore(repo)),
		account.NewManager(repo, nil),
		provider.NewManager(repo, nil),
		federation.NewManager(repo, nil),
		repo,
		nil,
	)

	e := echo.New()
	g := e.Group("/api/v1")
	h.RegisterRoutes(g)
	return e
}

func doJSON(e *echo.Echo, method, path string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAccountLinkAPIIntegration(t *testing.T) {
	e := setupServer(t)

	// 1. Grant a link, omitting the role so the default applies.
	rec := doJSON(e, http.MethodPost, "/api/v1/account-links", map[string]string{
		"account_id":   "acc-1",
		"entity_table": "companies",
		"entity_id":    "co-9",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("grant failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var granted link.AccountLink
	json.Unmarshal(rec.Body.Bytes(), &granted)
	if granted.Role != "user" {
		t.Errorf("expected default role 'user', got %q", granted.Role)
	}

	// 2. Granting the same triple again must not create a second row.
	rec = doJSON(e, http.MethodPost, "/api/v1/account-links", map[string]string{
		"account_id":   "acc-1",
		"entity_table": "companies",
		"entity_id":    "co-9",
		"role":         "admin",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("re-grant failed with code %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(e, http.MethodGet, "/api/v1/account-links/by-account/acc-1", nil)
	var links []link.AccountLink
	json.Unmarshal(rec.Body.Bytes(), &links)
	if len(links) != 1 {
		t.Fatalf("expected 1 link after re-grant, got %d", len(links))
	}
	if links[0].Role != "admin" {
		t.Errorf("expected re-grant to take role 'admin', got %q", links[0].Role)
	}

	// 3. Missing fields are rejected.
	rec = doJSON(e, http.MethodPost, "/api/v1/account-links", map[string]string{
		"account_id": "acc-1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for incomplete grant, got %d", rec.Code)
	}

	// 4. Has-access honors the role hierarchy.
	for required, want := range map[string]bool{"readonly": true, "user": true, "admin": true} {
		rec = doJSON(e, http.MethodGet,
			fmt.Sprintf("/api/v1/account-links/acc-1/companies/co-9/has-access?requiredRole=%s", required), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("has-access failed with code %d", rec.Code)
		}
		var allowed bool
		json.Unmarshal(rec.Body.Bytes(), &allowed)
		if allowed != want {
			t.Errorf("has-access(admin holder, required=%s) = %v, want %v", required, allowed, want)
		}
	}

	// 5. No link means no access, not an error.
	rec = doJSON(e, http.MethodGet, "/api/v1/account-links/acc-2/companies/co-9/has-access?requiredRole=readonly", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("has-access for unlinked account failed with code %d", rec.Code)
	}
	var allowed bool
	json.Unmarshal(rec.Body.Bytes(), &allowed)
	if allowed {
		t.Error("expected no access for an unlinked account")
	}

	// 6. Role update.
	rec = doJSON(e, http.MethodPatch, "/api/v1/account-links/acc-1/companies/co-9/role", map[string]string{
		"role": "readonly",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("role update failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var updated link.AccountLink
	json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.Role != "readonly" {
		t.Errorf("expected role 'readonly' after update, got %q", updated.Role)
	}

	// 7. Revoke, then the link is gone.
	rec = doJSON(e, http.MethodDelete, "/api/v1/account-links/acc-1/companies/co-9", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("revoke failed with code %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(e, http.MethodGet, "/api/v1/account-links/acc-1/companies/co-9", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after revoke, got %d", rec.Code)
	}

	// 8. Revoking again is a 404.
	rec = doJSON(e, http.MethodDelete, "/api/v1/account-links/acc-1/companies/co-9", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for double revoke, got %d", rec.Code)
	}

	// 9. The grant and the changes left an audit trail.
	rec = doJSON(e, http.MethodGet, "/api/v1/audit-events?resourceType=companies&resourceId=co-9", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit query failed with code %d", rec.Code)
	}
	var events []map[string]any
	json.Unmarshal(rec.Body.Bytes(), &events)
	if len(events) == 0 {
		t.Error("expected audit events for the link lifecycle")
	}
}

func TestAccountAPIIntegration(t *testing.T) {
	e := setupServer(t)

	// 1. Create
	rec := doJSON(e, http.MethodPost, "/api/v1/accounts", map[string]string{
		"account_id":   "acc-42",
		"keycloak_sub": "kc-sub-42",
		"email_norm":   "jo@example.com",
		"username":     "jo",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var created account.UserAccount
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.Status != account.StatusActive {
		t.Errorf("expected default status %q, got %q", account.StatusActive, created.Status)
	}

	// 2. Lookups
	for _, path := range []string{
		"/api/v1/accounts/acc-42",
		"/api/v1/accounts/by-email?email=jo@example.com",
		"/api/v1/accounts/by-username?username=jo",
		"/api/v1/accounts/by-subject?subject=kc-sub-42",
	} {
		rec = doJSON(e, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s failed with code %d: %s", path, rec.Code, rec.Body.String())
		}
	}

	// 3. Partial update
	rec = doJSON(e, http.MethodPatch, "/api/v1/accounts/acc-42", map[string]string{
		"display_name": "Jo Doe",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var updated account.UserAccount
	json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.DisplayName != "Jo Doe" {
		t.Errorf("expected display name update, got %q", updated.DisplayName)
	}
	if updated.Username != "jo" {
		t.Errorf("partial update cleared username: %q", updated.Username)
	}

	// 4. Status + last login
	rec = doJSON(e, http.MethodPatch, "/api/v1/accounts/acc-42/status", map[string]string{"status": account.StatusSuspended})
	if rec.Code != http.StatusOK {
		t.Fatalf("status update failed with code %d", rec.Code)
	}
	rec = doJSON(e, http.MethodPost, "/api/v1/accounts/acc-42/last-login", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("last-login failed with code %d", rec.Code)
	}
	var touched account.UserAccount
	json.Unmarshal(rec.Body.Bytes(), &touched)
	if touched.LastLoginAt == nil {
		t.Error("expected last_login_at to be set")
	}

	// 5. Delete, then 404
	rec = doJSON(e, http.MethodDelete, "/api/v1/accounts/acc-42", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed with code %d", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/v1/accounts/acc-42", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestProviderAndFederationAPIIntegration(t *testing.T) {
	e := setupServer(t)

	// 1. Create a provider.
	rec := doJSON(e, http.MethodPost, "/api/v1/identity-providers", map[string]any{
		"key":    "keycloak",
		"name":   "Keycloak",
		"type":   "oidc",
		"config": map[string]string{"issuer": "https://kc.example.com/realms/main"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create provider failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var created provider.IdentityProvider
	json.Unmarshal(rec.Body.Bytes(), &created)
	if !created.IsActive {
		t.Error("expected new provider to be active")
	}

	// 2. Key lookup and toggle.
	rec = doJSON(e, http.MethodGet, "/api/v1/identity-providers/by-key/keycloak", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("by-key lookup failed with code %d", rec.Code)
	}
	rec = doJSON(e, http.MethodPatch, fmt.Sprintf("/api/v1/identity-providers/%d/toggle", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var toggled provider.IdentityProvider
	json.Unmarshal(rec.Body.Bytes(), &toggled)
	if toggled.IsActive {
		t.Error("expected toggle to deactivate the provider")
	}

	// 3. Duplicate key is rejected.
	rec = doJSON(e, http.MethodPost, "/api/v1/identity-providers", map[string]any{
		"key":  "keycloak",
		"name": "Other",
		"type": "oidc",
	})
	if rec.Code == http.StatusCreated {
		t.Error("expected duplicate provider key to be rejected")
	}

	// 4. Create an external identity bound to the provider.
	rec = doJSON(e, http.MethodPost, "/api/v1/external-identities", map[string]any{
		"entity_table": "users",
		"entity_id":    "u-7",
		"idp_key":      "keycloak",
		"external_id":  "kc-ext-7",
		"module":       "hr",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create external identity failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var ext federation.ExternalIdentity
	json.Unmarshal(rec.Body.Bytes(), &ext)
	if ext.SyncStatus != federation.SyncOK {
		t.Errorf("expected initial sync status %q, got %q", federation.SyncOK, ext.SyncStatus)
	}

	// 5. Lookups.
	rec = doJSON(e, http.MethodGet, "/api/v1/external-identities/by-entity?entityTable=users&entityId=u-7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("by-entity lookup failed with code %d", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/v1/external-identities/by-provider?idpKey=keycloak&externalId=kc-ext-7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("by-provider lookup failed with code %d", rec.Code)
	}

	// 6. Sync status update.
	rec = doJSON(e, http.MethodPatch, fmt.Sprintf("/api/v1/external-identities/%d/sync-status", ext.ID), map[string]string{
		"sync_status": federation.SyncError,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("sync-status update failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var synced federation.ExternalIdentity
	json.Unmarshal(rec.Body.Bytes(), &synced)
	if synced.SyncStatus != federation.SyncError {
		t.Errorf("expected sync status %q, got %q", federation.SyncError, synced.SyncStatus)
	}

	// 7. Duplicate (idp_key, external_id) pair is rejected.
	rec = doJSON(e, http.MethodPost, "/api/v1/external-identities", map[string]any{
		"entity_table": "users",
		"entity_id":    "u-8",
		"idp_key":      "keycloak",
		"external_id":  "kc-ext-7",
	})
	if rec.Code == http.StatusCreated {
		t.Error("expected duplicate external id for a provider to be rejected")
	}
}

func signCaller(t *testing.T, secret, accountID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": accountID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestGuardedEntityLinksRoute(t *testing.T) {
	const secret = "test-secret"

	dbPath := filepath.Join(t.TempDir(), "gatekit_test.db")
	repo, err := gormstore.NewStorage("sqlite", dbPath, nil)
	if err != nil {
		t.Fatalf("failed to setup repo: %v", err)
	}
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	links := link.NewManager(repo)
	h := NewHandler(links, account.NewManager(repo, nil), provider.NewManager(repo, nil),
		federation.NewManager(repo, nil), repo, nil)

	// Mirror the server wiring: one guarded roster route per entity table.
	policies := guard.NewRegistry()
	policies.Declare("companies.links.view", guard.Policy{EntityTable: "companies", RequiredRole: "readonly"})
	gm := guard.NewMiddleware(links, policies, nil)
	authMW := auth.NewMiddleware([]byte(secret), nil)

	e := echo.New()
	grp := e.Group("/api/v1/companies", authMW.Authenticate)
	grp.GET("/:entityId/links", h.HandleListEntityLinks("companies"), gm.Protect("companies.links.view"))

	ctx := context.Background()
	if _, err := links.Grant(ctx, "member", "companies", "co-1", "readonly"); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if _, err := links.Grant(ctx, "owner", "companies", "co-1", "admin"); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	call := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/companies/co-1/links", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	// A linked caller sees the full roster.
	rec := call(signCaller(t, secret, "member"))
	if rec.Code != http.StatusOK {
		t.Fatalf("member request failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var roster []link.AccountLink
	json.Unmarshal(rec.Body.Bytes(), &roster)
	if len(roster) != 2 {
		t.Errorf("expected 2 links in roster, got %d", len(roster))
	}

	// An unlinked caller is denied, not errored.
	if rec := call(signCaller(t, secret, "outsider")); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for unlinked caller, got %d", rec.Code)
	}

	// No token at all fails authentication before the guard runs.
	if rec := call(""); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}
