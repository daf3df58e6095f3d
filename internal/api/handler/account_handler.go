package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/proyecto-caja/caja-server/internal/core/ports"
)

// AccountHandler serves the per-user account endpoints. Accounts are never
// removed; DELETE deactivates.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// List handles GET /accounts.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     CookieAuth
// @Param        type             query     string  false  "CASH, BANK, INCOME or CLIENT"
// @Param        includeInactive  query     bool    false  "Include deactivated accounts"
// @Success      200              {array}   accountResponse
// @Failure      401              {object}  errorResponse
// @Router       /accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var q listAccountsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return invalidPayload()
	}

	items, err := h.service.List(c.Request().Context(), id.UserID, ports.ListAccountsInput{
		Type:            q.Type,
		IncludeInactive: q.IncludeInactive == "true",
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountsResponse(items))
}

// Create handles POST /accounts.
//
// @Summary      Create an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      createAccountRequest  true  "Account"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload()
	}

	account, err := h.service.Create(c.Request().Context(), id.UserID, ports.CreateAccountInput{
		Name:     req.Name,
		Type:     req.Type,
		ClientID: req.ClientID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// Update handles PUT /accounts/:id.
//
// @Summary      Rename or toggle an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string                true  "Account ID"
// @Param        body  body      updateAccountRequest  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /accounts/{id} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload()
	}

	account, err := h.service.Update(c.Request().Context(), id.UserID, c.Param("id"), ports.UpdateAccountInput{
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Deactivate handles DELETE /accounts/:id.
//
// @Summary      Deactivate an account
// @Tags         accounts
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  accountResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /accounts/{id} [delete]
func (h *AccountHandler) Deactivate(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	account, err := h.service.Deactivate(c.Request().Context(), id.UserID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}
