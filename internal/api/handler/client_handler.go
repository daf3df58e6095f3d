package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/proyecto-caja/caja-server/internal/core/ports"
)

// ClientHandler serves the per-user client CRUD.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// List handles GET /clients.
//
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     CookieAuth
// @Param        q    query     string  false  "Search by razon social or cuit"
// @Success      200  {array}   clientResponse
// @Failure      401  {object}  errorResponse
// @Router       /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	items, err := h.service.List(c.Request().Context(), id.UserID, c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientsResponse(items))
}

// Get handles GET /clients/:id.
//
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  clientResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	client, err := h.service.Get(c.Request().Context(), id.UserID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// Create handles POST /clients.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      createClientRequest  true  "Client"
// @Success      201   {object}  clientResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createClientRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload()
	}

	client, err := h.service.Create(c.Request().Context(), id.UserID, ports.CreateClientInput{
		RazonSocial: req.RazonSocial,
		Cuit:        req.Cuit,
		TipoPersona: req.TipoPersona,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toClientResponse(client))
}

// Update handles PUT /clients/:id. Absent fields are left untouched and
// an explicit null clears cuit or tipoPersona.
//
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string               true  "Client ID"
// @Param        body  body      updateClientRequest  true  "Fields to change"
// @Success      200   {object}  clientResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateClientRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload()
	}

	client, err := h.service.Update(c.Request().Context(), id.UserID, c.Param("id"), toUpdateClientInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// Delete handles DELETE /clients/:id.
//
// @Summary      Delete a client
// @Tags         clients
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  okResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}
