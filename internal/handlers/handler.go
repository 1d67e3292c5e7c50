package handlers

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/observability"
	"github.com/harentsoaR/doctors-portal-api/internal/services"
	"github.com/harentsoaR/doctors-portal-api/internal/storage"
	"github.com/harentsoaR/doctors-portal-api/internal/store"
)

// The store interfaces are small so tests can fake them.

type UserStore interface {
	Insert(ctx context.Context, u models.User) (string, error)
	Upsert(ctx context.Context, u models.User) (store.UpdateResult, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	SetRole(ctx context.Context, email string, role models.Role) (store.UpdateResult, error)
}

type AppointmentStore interface {
	Create(ctx context.Context, apt models.Appointment) (primitive.ObjectID, error)
	FindBySlot(ctx context.Context, email, date string) ([]models.Appointment, error)
	FindByID(ctx context.Context, id string) (models.Appointment, error)
	AttachPayment(ctx context.Context, id string, payment models.Payment) (store.AttachResult, error)
}

type DoctorStore interface {
	Insert(ctx context.Context, d models.Doctor) (primitive.ObjectID, error)
	List(ctx context.Context) ([]models.Doctor, error)
}

type PromotionGate interface {
	AuthorizePromotion(ctx context.Context, principal *models.Principal, targetEmail string) (services.Decision, error)
}

type PaymentIssuer interface {
	CreateIntent(ctx context.Context, price decimal.Decimal) (services.PaymentIntent, error)
}

type BookingNotifier interface {
	SendBookingConfirmation(apt models.Appointment)
}

// Deps lists what the handlers need. Notifier, Images and Prom may be nil.
type Deps struct {
	Users        UserStore
	Appointments AppointmentStore
	Doctors      DoctorStore
	Gate         PromotionGate
	Payments     PaymentIssuer
	Notifier     BookingNotifier
	Images       storage.ImageStore
	Prom         *observability.Prom
	Log          *slog.Logger
}

type Handler struct {
	users        UserStore
	appointments AppointmentStore
	doctors      DoctorStore
	gate         PromotionGate
	payments     PaymentIssuer
	notifier     BookingNotifier
	images       storage.ImageStore
	prom         *observability.Prom
	log          *slog.Logger
}

func NewHandler(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		users:        d.Users,
		appointments: d.Appointments,
		doctors:      d.Doctors,
		gate:         d.Gate,
		payments:     d.Payments,
		notifier:     d.Notifier,
		images:       d.Images,
		prom:         d.Prom,
		log:          log,
	}
}
