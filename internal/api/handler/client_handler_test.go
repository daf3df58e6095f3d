package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
)

type stubClientService struct {
	listFn   func(ctx context.Context, userID, query string) ([]*domain.Client, error)
	getFn    func(ctx context.Context, userID, id string) (*domain.Client, error)
	createFn func(ctx context.Context, userID string, input ports.CreateClientInput) (*domain.Client, error)
	updateFn func(ctx context.Context, userID, id string, input ports.UpdateClientInput) (*domain.Client, error)
	deleteFn func(ctx context.Context, userID, id string) error
}

func (s *stubClientService) List(ctx context.Context, userID, query string) ([]*domain.Client, error) {
	return s.listFn(ctx, userID, query)
}

func (s *stubClientService) Get(ctx context.Context, userID, id string) (*domain.Client, error) {
	return s.getFn(ctx, userID, id)
}

func (s *stubClientService) Create(ctx context.Context, userID string, input ports.CreateClientInput) (*domain.Client, error) {
	return s.createFn(ctx, userID, input)
}

func (s *stubClientService) Update(ctx context.Context, userID, id string, input ports.UpdateClientInput) (*domain.Client, error) {
	return s.updateFn(ctx, userID, id, input)
}

func (s *stubClientService) Delete(ctx context.Context, userID, id string) error {
	return s.deleteFn(ctx, userID, id)
}

func TestClientHandler_List_PassesQuery(t *testing.T) {
	stub := &stubClientService{
		listFn: func(_ context.Context, userID, query string) ([]*domain.Client, error) {
			if userID != "u1" || query != "acme" {
				t.Fatalf("unexpected args: %s %q", userID, query)
			}
			return nil, nil
		},
	}
	h := NewClientHandler(stub)

	c, rec := newJSONContext(http.MethodGet, "/clients?q=acme", "")
	if err := h.List(withIdentity(c, "u1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Body.String() != "[]\n" {
		t.Fatalf("expected empty array, got %q", rec.Body.String())
	}
}

func TestClientHandler_Create_NullFields(t *testing.T) {
	stub := &stubClientService{
		createFn: func(_ context.Context, userID string, input ports.CreateClientInput) (*domain.Client, error) {
			if input.RazonSocial != "ACME" || input.Cuit != nil || input.TipoPersona != nil {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.Client{ID: "c1", UserID: userID, RazonSocial: input.RazonSocial}, nil
		},
	}
	h := NewClientHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/clients", `{"razonSocial":"ACME"}`)
	if err := h.Create(withIdentity(c, "u1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if v, ok := resp["cuit"]; !ok || v != nil {
		t.Fatalf("expected cuit:null, got %+v", resp)
	}
	if v, ok := resp["tipoPersona"]; !ok || v != nil {
		t.Fatalf("expected tipoPersona:null, got %+v", resp)
	}
	if resp["userId"] != "u1" {
		t.Fatalf("unexpected userId: %+v", resp)
	}
}

func TestClientHandler_Update_TriState(t *testing.T) {
	var got ports.UpdateClientInput
	stub := &stubClientService{
		updateFn: func(_ context.Context, _, id string, input ports.UpdateClientInput) (*domain.Client, error) {
			got = input
			return &domain.Client{ID: id, RazonSocial: "ACME"}, nil
		},
	}
	h := NewClientHandler(stub)

	c, _ := newJSONContext(http.MethodPut, "/clients/c1", `{"cuit":null}`)
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := h.Update(withIdentity(c, "u1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if got.RazonSocial != nil {
		t.Fatalf("razonSocial should be absent")
	}
	if !got.Cuit.Set || got.Cuit.Value != nil {
		t.Fatalf("cuit should be an explicit null, got %+v", got.Cuit)
	}
	if got.TipoPersona.Set {
		t.Fatalf("tipoPersona should be absent")
	}
}

func TestClientHandler_Get_NotFound(t *testing.T) {
	stub := &stubClientService{
		getFn: func(context.Context, string, string) (*domain.Client, error) {
			return nil, domain.ErrClientNotFound
		},
	}
	h := NewClientHandler(stub)

	c, _ := newJSONContext(http.MethodGet, "/clients/x", "")
	c.SetParamNames("id")
	c.SetParamValues("x")
	if err := h.Get(withIdentity(c, "u1")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClientHandler_Delete(t *testing.T) {
	stub := &stubClientService{
		deleteFn: func(_ context.Context, userID, id string) error {
			if userID != "u1" || id != "c1" {
				t.Fatalf("unexpected args: %s %s", userID, id)
			}
			return nil
		},
	}
	h := NewClientHandler(stub)

	c, rec := newJSONContext(http.MethodDelete, "/clients/c1", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := h.Delete(withIdentity(c, "u1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Body.String() != "{\"ok\":true}\n" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}
