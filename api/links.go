package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/getgatekit/gatekit/audit"
)

func (h *Handler) HandleGrantLink(c echo.Context) error {
	var body struct {
		AccountID   string `json:"account_id"`
		EntityTable string `json:"entity_table"`
		EntityID    string `json:"entity_id"`
		Role        string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	l, err := h.links.Grant(c.Request().Context(), body.AccountID, body.EntityTable, body.EntityID, body.Role)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) HandleListLinks(c echo.Context) error {
	links, err := h.links.ListAll(c.Request().Context())
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, links)
}

func (h *Handler) HandleListLinksByAccount(c echo.Context) error {
	links, err := h.links.ListByAccount(c.Request().Context(), c.Param("accountId"))
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, links)
}

func (h *Handler) HandleListLinksByEntity(c echo.Context) error {
	links, err := h.links.ListByEntity(c.Request().Context(), c.QueryParam("entityTable"), c.QueryParam("entityId"))
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, links)
}

func (h *Handler) HandleGetLink(c echo.Context) error {
	l, err := h.links.Get(c.Request().Context(), c.Param("accountId"), c.Param("entityTable"), c.Param("entityId"))
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) HandleHasAccess(c echo.Context) error {
	allowed, err := h.links.HasAccess(
		c.Request().Context(),
		c.Param("accountId"),
		c.Param("entityTable"),
		c.Param("entityId"),
		c.QueryParam("requiredRole"),
	)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, allowed)
}

func (h *Handler) HandleSetLinkRole(c echo.Context) error {
	var body struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	l, err := h.links.SetRole(c.Request().Context(), c.Param("accountId"), c.Param("entityTable"), c.Param("entityId"), body.Role)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) HandleRevokeLink(c echo.Context) error {
	err := h.links.Revoke(c.Request().Context(), c.Param("accountId"), c.Param("entityTable"), c.Param("entityId"))
	if err != nil {
		return h.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleListEntityLinks returns a handler listing the links held on one
// entity of the given table, with the entity taken from the entityId route
// param. Meant to be mounted behind the guard so only linked accounts can
// see an entity's roster.
func (h *Handler) HandleListEntityLinks(entityTable string) echo.HandlerFunc {
	return func(c echo.Context) error {
		links, err := h.links.ListByEntity(c.Request().Context(), entityTable, c.Param("entityId"))
		if err != nil {
			return h.Error(c, err)
		}
		return c.JSON(http.StatusOK, links)
	}
}

func (h *Handler) HandleListAuditEvents(c echo.Context) error {
	filter := audit.Filter{
		ActorID:      c.QueryParam("actorId"),
		ResourceType: c.QueryParam("resourceType"),
		ResourceID:   c.QueryParam("resourceId"),
	}
	if t := c.QueryParam("type"); t != "" {
		filter.Types = []string{t}
	}
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(c.QueryParam("offset")); err == nil && n > 0 {
		filter.Offset = n
	}

	events, err := h.auditor.Query(c.Request().Context(), filter)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, events)
}
