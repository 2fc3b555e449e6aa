package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/getgatekit/gatekit/domain"
	"github.com/getgatekit/gatekit/federation"
)

func (h *Handler) HandleCreateExternalIdentity(c echo.Context) error {
	var body struct {
		EntityTable string          `json:"entity_table"`
		EntityID    string          `json:"entity_id"`
		IdpKey      string          `json:"idp_key"`
		ExternalID  string          `json:"external_id"`
		Module      string          `json:"module"`
		Metadata    json.RawMessage `json:"metadata"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	e, err := h.federation.Create(c.Request().Context(), &federation.ExternalIdentity{
		EntityTable: body.EntityTable,
		EntityID:    body.EntityID,
		IdpKey:      body.IdpKey,
		ExternalID:  body.ExternalID,
		Module:      body.Module,
		Metadata:    domain.JSON(body.Metadata),
	})
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) HandleListExternalIdentities(c echo.Context) error {
	identities, err := h.federation.List(c.Request().Context())
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, identities)
}

func (h *Handler) HandleFindExternalIdentitiesByEntity(c echo.Context) error {
	ctx := c.Request().Context()
	entityTable := c.QueryParam("entityTable")
	entityID := c.QueryParam("entityId")

	// With an idpKey the lookup narrows to at most one row.
	if idpKey := c.QueryParam("idpKey"); idpKey != "" {
		e, err := h.federation.FindByEntityAndProvider(ctx, entityTable, entityID, idpKey)
		if err != nil {
			return h.Error(c, err)
		}
		return c.JSON(http.StatusOK, e)
	}

	identities, err := h.federation.FindByEntity(ctx, entityTable, entityID)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, identities)
}

func (h *Handler) HandleFindExternalIdentityByProvider(c echo.Context) error {
	e, err := h.federation.FindByProvider(c.Request().Context(), c.QueryParam("idpKey"), c.QueryParam("externalId"))
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) HandleGetExternalIdentity(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	e, err := h.federation.Get(c.Request().Context(), id)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) HandleUpdateExternalIdentity(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var body federation.Update
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	e, err := h.federation.Update(c.Request().Context(), id, body)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) HandleUpdateSyncStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var body struct {
		SyncStatus string     `json:"sync_status"`
		LastSyncAt *time.Time `json:"last_sync_at"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	e, err := h.federation.UpdateSyncStatus(c.Request().Context(), id, body.SyncStatus, body.LastSyncAt)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) HandleDeleteExternalIdentity(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.federation.Delete(c.Request().Context(), id); err != nil {
		return h.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
