package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/getgatekit/gatekit/domain"
	"github.com/getgatekit/gatekit/provider"
)

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func (h *Handler) HandleCreateProvider(c echo.Context) error {
	var body struct {
		Key      string          `json:"key"`
		Name     string          `json:"name"`
		Type     string          `json:"type"`
		Config   json.RawMessage `json:"config"`
		IsActive *bool           `json:"is_active"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p := &provider.IdentityProvider{
		Key:    body.Key,
		Name:   body.Name,
		Type:   body.Type,
		Config: domain.JSON(body.Config),
	}
	if body.IsActive != nil {
		p.IsActive = *body.IsActive
	} else {
		p.IsActive = true
	}

	created, err := h.providers.Create(c.Request().Context(), p)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) HandleListProviders(c echo.Context) error {
	providers, err := h.providers.List(c.Request().Context())
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, providers)
}

func (h *Handler) HandleGetProvider(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.providers.Get(c.Request().Context(), id)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) HandleGetProviderByKey(c echo.Context) error {
	p, err := h.providers.GetByKey(c.Request().Context(), c.Param("key"))
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) HandleUpdateProvider(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var body provider.Update
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.providers.Update(c.Request().Context(), id, body)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) HandleToggleProvider(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.providers.ToggleStatus(c.Request().Context(), id)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) HandleDeleteProvider(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.providers.Delete(c.Request().Context(), id); err != nil {
		return h.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
