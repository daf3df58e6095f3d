package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/proyecto-caja/caja-server/internal/core/ports"
)

// AdminHandler serves /admin/users. Routes must sit behind RequireRole.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListUsers handles GET /admin/users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  usersEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usersEnvelope{OK: true, Users: toUsersResponse(users)})
}

// CreateUser handles POST /admin/users.
//
// @Summary      Create a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  userEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload()
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userEnvelope{OK: true, User: toUserResponse(user)})
}

// UpdateRole handles PUT /admin/users/:id.
//
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/users/{id} [put]
func (h *AdminHandler) UpdateRole(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload()
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.UpdateRole(c.Request().Context(), actor.UserID, c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{OK: true, User: toUserResponse(user)})
}
