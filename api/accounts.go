package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/getgatekit/gatekit/account"
)

func (h *Handler) HandleCreateAccount(c echo.Context) error {
	var body struct {
		AccountID   string `json:"account_id"`
		KeycloakSub string `json:"keycloak_sub"`
		EmailNorm   string `json:"email_norm"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		AvatarURL   string `json:"avatar_url"`
		Status      string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.accounts.Create(c.Request().Context(), &account.UserAccount{
		AccountID:   body.AccountID,
		KeycloakSub: body.KeycloakSub,
		EmailNorm:   body.EmailNorm,
		Username:    body.Username,
		DisplayName: body.DisplayName,
		AvatarURL:   body.AvatarURL,
		Status:      body.Status,
	})
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) HandleListAccounts(c echo.Context) error {
	accounts, err := h.accounts.List(c.Request().Context())
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, accounts)
}

func (h *Handler) HandleGetAccount(c echo.Context) error {
	a, err := h.accounts.Get(c.Request().Context(), c.Param("accountId"))
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) HandleFindAccountByEmail(c echo.Context) error {
	a, err := h.accounts.FindByEmail(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) HandleFindAccountByUsername(c echo.Context) error {
	a, err := h.accounts.FindByUsername(c.Request().Context(), c.QueryParam("username"))
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) HandleFindAccountBySubject(c echo.Context) error {
	a, err := h.accounts.FindBySubject(c.Request().Context(), c.QueryParam("subject"))
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) HandleUpdateAccount(c echo.Context) error {
	var body account.Update
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.accounts.Update(c.Request().Context(), c.Param("accountId"), body)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) HandleSetAccountStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.accounts.SetStatus(c.Request().Context(), c.Param("accountId"), body.Status)
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) HandleTouchLastLogin(c echo.Context) error {
	a, err := h.accounts.TouchLastLogin(c.Request().Context(), c.Param("accountId"))
	if err != nil {
		return h.Error(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) HandleDeleteAccount(c echo.Context) error {
	if err := h.accounts.Delete(c.Request().Context(), c.Param("accountId")); err != nil {
		return h.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
