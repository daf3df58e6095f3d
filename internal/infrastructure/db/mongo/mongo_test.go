package mongo

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
)

func dupKeyError(index string) error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: caja.accounts index: " + index + " dup key",
	}}}
}

func TestAccountWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"name taken", dupKeyError(indexAccountName), domain.ErrAccountExists},
		{"client linked", dupKeyError(indexAccountClient), domain.ErrClientLinked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := accountWriteError("insert account", tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	plain := errors.New("boom")
	if got := accountWriteError("insert account", plain); !errors.Is(got, plain) || errors.Is(got, domain.ErrConflict) {
		t.Fatalf("expected wrapped plain error, got %v", got)
	}
}

func TestClientListFilter(t *testing.T) {
	f := clientListFilter(ports.ClientFilter{UserID: "u1"})
	if _, ok := f["$or"]; ok {
		t.Fatalf("expected no $or without query, got %v", f)
	}

	f = clientListFilter(ports.ClientFilter{UserID: "u1", Query: "20-1234"})
	or, ok := f["$or"].(bson.A)
	if !ok {
		t.Fatalf("expected $or clause, got %v", f)
	}
	if len(or) != 3 {
		t.Fatalf("expected 3 alternatives, got %d", len(or))
	}
	digits := or[2].(bson.M)["cuit"].(primitive.Regex)
	if digits.Pattern != "201234" {
		t.Fatalf("unexpected digit pattern %q", digits.Pattern)
	}

	f = clientListFilter(ports.ClientFilter{UserID: "u1", Query: "a.c"})
	name := f["$or"].(bson.A)[0].(bson.M)["razon_social"].(primitive.Regex)
	if name.Pattern != `a\.c` || name.Options != "i" {
		t.Fatalf("expected escaped case-insensitive pattern, got %+v", name)
	}
}

func TestAccountListFilter(t *testing.T) {
	f := accountListFilter(ports.AccountFilter{UserID: "u1", Type: domain.AccountBank})
	if f["type"] != "BANK" || f["is_active"] != true {
		t.Fatalf("unexpected filter %v", f)
	}

	f = accountListFilter(ports.AccountFilter{UserID: "u1", IncludeInactive: true})
	if _, ok := f["is_active"]; ok {
		t.Fatalf("expected no is_active clause, got %v", f)
	}
}
