package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
	"github.com/proyecto-caja/caja-server/internal/core/ports"
)

type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type accountDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Name      string    `bson:"name"`
	Type      string    `bson:"type"`
	IsActive  bool      `bson:"is_active"`
	ClientID  *string   `bson:"client_id"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:        d.ID,
		UserID:    d.UserID,
		Name:      d.Name,
		Type:      domain.AccountType(d.Type),
		IsActive:  d.IsActive,
		ClientID:  d.ClientID,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func accountListFilter(f ports.AccountFilter) bson.M {
	filter := bson.M{"user_id": f.UserID}
	if f.Type != "" {
		filter["type"] = string(f.Type)
	}
	if !f.IncludeInactive {
		filter["is_active"] = true
	}
	return filter
}

func (r *AccountRepository) List(ctx context.Context, f ports.AccountFilter) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "type", Value: 1}, {Key: "name", Value: 1}})
	cur, err := r.col.Find(ctx, accountListFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	out := make([]*domain.Account, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, userID, id string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := accountDoc{
		ID:        a.ID,
		UserID:    a.UserID,
		Name:      a.Name,
		Type:      string(a.Type),
		IsActive:  a.IsActive,
		ClientID:  a.ClientID,
		CreatedAt: a.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return accountWriteError("insert account", err)
	}
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": a.ID, "user_id": a.UserID},
		bson.M{"$set": bson.M{"name": a.Name, "is_active": a.IsActive}},
	)
	if err != nil {
		return accountWriteError("update account", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// Upsert converges on the (user, name) unique index. Two concurrent
// inserts can race; the loser sees a duplicate key and retries as an update.
func (r *AccountRepository) Upsert(ctx context.Context, userID, name string, t domain.AccountType) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID, "name": name}
	update := bson.M{
		"$set": bson.M{"type": string(t), "is_active": true, "client_id": nil},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"created_at": time.Now().UTC(),
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.col.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		_, err = r.col.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) CountByClient(ctx context.Context, userID, clientID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"user_id": userID, "client_id": clientID})
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func accountWriteError(op string, err error) error {
	if name, dup := duplicateIndex(err); dup {
		if name == indexAccountClient {
			return domain.ErrClientLinked
		}
		return domain.ErrAccountExists
	}
	return fmt.Errorf("%s: %w", op, err)
}
