package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/doctors-portal-api/internal/db"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/observability"
)

// AppointmentsStore is the appointment ledger. Dates are expected in
// models.DateLayout on both the write and the lookup path.
type AppointmentsStore struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewAppointmentsStore(client *db.Client, prom *observability.Prom) *AppointmentsStore {
	return &AppointmentsStore{coll: client.Collection(AppointmentsCollection), prom: prom}
}

// AttachResult reports the payment that was on the appointment before the
// update, nil on the first attachment.
type AttachResult struct {
	Previous *models.Payment
}

func (r AttachResult) Overwrote() bool {
	return r.Previous != nil
}

func (s *AppointmentsStore) Create(ctx context.Context, apt models.Appointment) (primitive.ObjectID, error) {
	apt.ID = primitive.NewObjectID()
	apt.Payment = nil

	err := s.prom.ObserveDB("appointments.create", func() error {
		_, err := s.coll.InsertOne(ctx, apt)
		return err
	})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert appointment: %w", err)
	}
	return apt.ID, nil
}

// FindBySlot returns every appointment with exactly this email and date.
func (s *AppointmentsStore) FindBySlot(ctx context.Context, email, date string) ([]models.Appointment, error) {
	appointments := make([]models.Appointment, 0)

	filter := bson.M{"email": email, "date": date}
	findOptions := options.Find().SetSort(bson.D{{Key: "time", Value: 1}, {Key: "_id", Value: 1}})

	err := s.prom.ObserveDB("appointments.find_by_slot", func() error {
		cursor, err := s.coll.Find(ctx, filter, findOptions)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)

		return cursor.All(ctx, &appointments)
	})
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	return appointments, nil
}

func (s *AppointmentsStore) FindByID(ctx context.Context, id string) (models.Appointment, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Appointment{}, err
	}

	var apt models.Appointment
	err = s.prom.ObserveDB("appointments.find_by_id", func() error {
		return s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&apt)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Appointment{}, ErrNotFound
		}
		return models.Appointment{}, fmt.Errorf("find appointment: %w", err)
	}
	return apt, nil
}

// AttachPayment sets only the payment field, leaving the rest of the record
// untouched. A second call replaces the earlier payment; the previous value
// is returned so callers can see it happened.
func (s *AppointmentsStore) AttachPayment(ctx context.Context, id string, payment models.Payment) (AttachResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return AttachResult{}, err
	}

	var before models.Appointment
	err = s.prom.ObserveDB("appointments.attach_payment", func() error {
		return s.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": oid},
			bson.M{"$set": bson.M{"payment": payment}},
			options.FindOneAndUpdate().SetReturnDocument(options.Before),
		).Decode(&before)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return AttachResult{}, ErrNotFound
		}
		return AttachResult{}, fmt.Errorf("attach payment: %w", err)
	}
	return AttachResult{Previous: before.Payment}, nil
}
