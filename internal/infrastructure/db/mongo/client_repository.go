package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
)

type ClientRepository struct {
	col      *mongo.Collection
	accounts *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{
		col:      db.Collection(collectionClients),
		accounts: db.Collection(collectionAccounts),
	}
}

type clientDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	RazonSocial string    `bson:"razon_social"`
	Cuit        *string   `bson:"cuit"`
	TipoPersona *string   `bson:"tipo_persona"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d clientDoc) toDomain() *domain.Client {
	return &domain.Client{
		ID:          d.ID,
		UserID:      d.UserID,
		RazonSocial: d.RazonSocial,
		Cuit:        d.Cuit,
		TipoPersona: d.TipoPersona,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// clientListFilter builds the owner-scoped filter for a listing.
func clientListFilter(f ports.ClientFilter) bson.M {
	filter := bson.M{"user_id": f.UserID}
	if f.Query == "" {
		return filter
	}

	or := bson.A{
		bson.M{"razon_social": primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}},
		bson.M{"cuit": primitive.Regex{Pattern: regexp.QuoteMeta(f.Query)}},
	}
	if digits := domain.Digits(f.Query); digits != "" && digits != f.Query {
		or = append(or, bson.M{"cuit": primitive.Regex{Pattern: digits}})
	}
	filter["$or"] = or
	return filter
}

func (r *ClientRepository) List(ctx context.Context, f ports.ClientFilter) ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, clientListFilter(f), options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	var docs []clientDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}

	out := make([]*domain.Client, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, userID, id string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc clientDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := clientDoc{
		ID:          c.ID,
		UserID:      c.UserID,
		RazonSocial: c.RazonSocial,
		Cuit:        c.Cuit,
		TipoPersona: c.TipoPersona,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrCuitTaken
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": c.ID, "user_id": c.UserID},
		bson.M{"$set": bson.M{
			"razon_social": c.RazonSocial,
			"cuit":         c.Cuit,
			"tipo_persona": c.TipoPersona,
			"updated_at":   c.UpdatedAt,
		}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrCuitTaken
		}
		return fmt.Errorf("update client: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// Delete refuses to remove a client still referenced by an account; Mongo
// has no foreign keys to do it for us.
func (r *ClientRepository) Delete(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	linked, err := r.accounts.CountDocuments(ctx, bson.M{"user_id": userID, "client_id": id})
	if err != nil {
		return fmt.Errorf("count linked accounts: %w", err)
	}
	if linked > 0 {
		return domain.ErrClientInUse
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}
