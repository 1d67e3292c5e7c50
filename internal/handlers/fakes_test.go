package handlers_test

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal-api/internal/auth"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/store"
)

// memUsers mirrors UsersStore semantics: unique email, role never written by
// profile calls, SetRole without upsert.
type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]models.User
	findErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]models.User{}}
}

func (m *memUsers) seed(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[u.Email] = u
}

func (m *memUsers) Insert(_ context.Context, u models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return "", fmt.Errorf("user %s: %w", u.Email, store.ErrDuplicate)
	}
	u.ID = primitive.NewObjectID()
	u.Role = ""
	m.byEmail[u.Email] = u
	return u.ID.Hex(), nil
}

// Upsert merges like a $set of the profile: empty typed fields are left
// alone and extra keys are added or replaced one by one.
func (m *memUsers) Upsert(_ context.Context, u models.User) (store.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byEmail[u.Email]
	if !ok {
		existing = models.User{ID: primitive.NewObjectID(), Email: u.Email}
	}
	if u.DisplayName != "" {
		existing.DisplayName = u.DisplayName
	}
	for k, v := range u.Extra {
		if existing.Extra == nil {
			existing.Extra = map[string]interface{}{}
		}
		existing.Extra[k] = v
	}
	m.byEmail[u.Email] = existing
	if !ok {
		return store.UpdateResult{UpsertedID: existing.ID.Hex()}, nil
	}
	return store.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return models.User{}, m.findErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) SetRole(_ context.Context, email string, role models.Role) (store.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return store.UpdateResult{}, nil
	}
	modified := int64(0)
	if u.Role != role {
		modified = 1
	}
	u.Role = role
	m.byEmail[email] = u
	return store.UpdateResult{MatchedCount: 1, ModifiedCount: modified}, nil
}

type memAppointments struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Appointment
	err  error
}

func newMemAppointments() *memAppointments {
	return &memAppointments{byID: map[primitive.ObjectID]models.Appointment{}}
}

func (m *memAppointments) Create(_ context.Context, apt models.Appointment) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return primitive.NilObjectID, m.err
	}
	apt.ID = primitive.NewObjectID()
	apt.Payment = nil
	m.byID[apt.ID] = apt
	return apt.ID, nil
}

func (m *memAppointments) FindBySlot(_ context.Context, email, date string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Appointment, 0)
	for _, apt := range m.byID {
		if apt.Email == email && apt.Date == date {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (m *memAppointments) FindByID(_ context.Context, id string) (models.Appointment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Appointment{}, store.ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	apt, ok := m.byID[oid]
	if !ok {
		return models.Appointment{}, store.ErrNotFound
	}
	return apt, nil
}

func (m *memAppointments) AttachPayment(_ context.Context, id string, payment models.Payment) (store.AttachResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.AttachResult{}, store.ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	apt, ok := m.byID[oid]
	if !ok {
		return store.AttachResult{}, store.ErrNotFound
	}
	prev := apt.Payment
	apt.Payment = &payment
	m.byID[oid] = apt
	return store.AttachResult{Previous: prev}, nil
}

type memDoctors struct {
	mu      sync.Mutex
	doctors []models.Doctor
}

func (m *memDoctors) Insert(_ context.Context, d models.Doctor) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	m.doctors = append(m.doctors, d)
	return d.ID, nil
}

func (m *memDoctors) List(context.Context) ([]models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Doctor(nil), m.doctors...), nil
}

type fakeImages struct {
	putFn func(ctx context.Context, key string, data []byte, contentType string) error
}

func (f *fakeImages) PutImage(ctx context.Context, key string, data []byte, contentType string) error {
	return f.putFn(ctx, key, data, contentType)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []models.Appointment
}

func (f *fakeNotifier) SendBookingConfirmation(apt models.Appointment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, apt)
}

// fakeTokens maps raw bearer tokens to verified emails.
type fakeTokens map[string]string

func (f fakeTokens) VerifyIDToken(_ context.Context, token string) (models.Principal, error) {
	email, ok := f[token]
	if !ok {
		return models.Principal{}, fmt.Errorf("%w: unknown token", auth.ErrInvalidToken)
	}
	return models.Principal{Email: email, Subject: "uid-" + token}, nil
}
