package handler

import (
	"encoding/json"
	"time"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// --- Auth / users ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type createUserRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type userEnvelope struct {
	OK   bool         `json:"ok"`
	User userResponse `json:"user"`
}

type usersEnvelope struct {
	OK    bool           `json:"ok"`
	Users []userResponse `json:"users"`
}

// --- Clients ---

type createClientRequest struct {
	RazonSocial string  `json:"razonSocial"`
	Cuit        *string `json:"cuit"`
	TipoPersona *string `json:"tipoPersona"`
}

// optionalString tells an absent field apart from an explicit null.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type updateClientRequest struct {
	RazonSocial *string        `json:"razonSocial"`
	Cuit        optionalString `json:"cuit"        swaggertype:"string"`
	TipoPersona optionalString `json:"tipoPersona" swaggertype:"string"`
}

type clientResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	RazonSocial string    `json:"razonSocial"`
	Cuit        *string   `json:"cuit"`
	TipoPersona *string   `json:"tipoPersona"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// --- Accounts ---

type listAccountsQuery struct {
	Type            string `query:"type"`
	IncludeInactive string `query:"includeInactive"`
}

type createAccountRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	ClientID *string `json:"clientId"`
}

type updateAccountRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"isActive"`
}

type accountResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	IsActive bool    `json:"isActive"`
	ClientID *string `json:"clientId"`
}

// --- Health ---

type livenessResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}
