package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/doctors-portal-api/internal/db"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/observability"
)

// UsersStore is the user half of the directory. Profile writes never touch
// the role field; SetRole is the only path that does.
type UsersStore struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewUsersStore(client *db.Client, prom *observability.Prom) *UsersStore {
	return &UsersStore{coll: client.Collection(UsersCollection), prom: prom}
}

// EnsureIndexes creates the unique email index that keeps one record per
// email.
func (s *UsersStore) EnsureIndexes(ctx context.Context) error {
	return s.prom.ObserveDB("users.ensure_indexes", func() error {
		_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		})
		return err
	})
}

func (s *UsersStore) Insert(ctx context.Context, u models.User) (string, error) {
	u.ID = primitive.NewObjectID()
	u.Email = strings.TrimSpace(u.Email)
	u.Role = ""

	err := s.prom.ObserveDB("users.insert", func() error {
		_, err := s.coll.InsertOne(ctx, u)
		return err
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return u.ID.Hex(), nil
}

// Upsert sets the supplied profile fields on the record for u.Email,
// creating it when missing.
func (s *UsersStore) Upsert(ctx context.Context, u models.User) (UpdateResult, error) {
	u.ID = primitive.NilObjectID
	u.Email = strings.TrimSpace(u.Email)
	u.Role = ""

	var res *mongo.UpdateResult
	err := s.prom.ObserveDB("users.upsert", func() error {
		var err error
		res, err = s.coll.UpdateOne(ctx,
			bson.M{"email": u.Email},
			bson.M{"$set": u},
			options.Update().SetUpsert(true),
		)
		return err
	})
	if err != nil {
		return UpdateResult{}, fmt.Errorf("upsert user: %w", err)
	}
	return fromMongoUpdate(res), nil
}

func (s *UsersStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.prom.ObserveDB("users.find_by_email", func() error {
		return s.coll.FindOne(ctx, bson.M{"email": strings.TrimSpace(email)}).Decode(&u)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// SetRole updates the role of an existing user. A missing user is reported
// through MatchedCount, not as an error.
func (s *UsersStore) SetRole(ctx context.Context, email string, role models.Role) (UpdateResult, error) {
	var res *mongo.UpdateResult
	err := s.prom.ObserveDB("users.set_role", func() error {
		var err error
		res, err = s.coll.UpdateOne(ctx,
			bson.M{"email": strings.TrimSpace(email)},
			bson.M{"$set": bson.M{"role": role}},
		)
		return err
	})
	if err != nil {
		return UpdateResult{}, fmt.Errorf("set role: %w", err)
	}
	return fromMongoUpdate(res), nil
}
