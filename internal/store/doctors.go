package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/doctors-portal-api/internal/db"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/observability"
)

type DoctorsStore struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewDoctorsStore(client *db.Client, prom *observability.Prom) *DoctorsStore {
	return &DoctorsStore{coll: client.Collection(DoctorsCollection), prom: prom}
}

// Insert stores d under a fresh id. Callers that need the id before the
// write (image keys) may set it themselves.
func (s *DoctorsStore) Insert(ctx context.Context, d models.Doctor) (primitive.ObjectID, error) {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}

	err := s.prom.ObserveDB("doctors.insert", func() error {
		_, err := s.coll.InsertOne(ctx, d)
		return err
	})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert doctor: %w", err)
	}
	return d.ID, nil
}

func (s *DoctorsStore) List(ctx context.Context) ([]models.Doctor, error) {
	doctors := make([]models.Doctor, 0)

	err := s.prom.ObserveDB("doctors.list", func() error {
		cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)

		return cursor.All(ctx, &doctors)
	})
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}
