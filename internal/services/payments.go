package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/harentsoaR/doctors-portal-api/internal/observability"
)

var stripeTracer = otel.Tracer("portal.internal.services.payments")

// maxMinorUnits is the processor's per-charge ceiling for two-decimal
// currencies.
const maxMinorUnits = 99_999_999

var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrPaymentsNotConfigured = errors.New("payment processor not configured")
)

// PaymentIntent is what the processor returned for a new intent. Only the
// client secret goes back to the browser.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}

// PaymentService issues Stripe payment intents. It never touches
// appointments; attaching the confirmed payment is a separate call.
type PaymentService struct {
	secretKey  string
	currency   string
	baseURL    string
	apiVersion string
	client     *resty.Client
	log        *slog.Logger
	prom       *observability.Prom
}

func NewPaymentService(secretKey, currency string, log *slog.Logger, prom *observability.Prom) *PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{
		secretKey:  secretKey,
		currency:   strings.ToLower(currency),
		baseURL:    "https://api.stripe.com",
		apiVersion: "2024-12-18.acacia",
		client:     resty.New().SetTimeout(10 * time.Second),
		log:        log,
		prom:       prom,
	}
}

// WithBaseURL overrides the Stripe API base URL (for testing).
func (s *PaymentService) WithBaseURL(baseURL string) *PaymentService {
	if baseURL != "" {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
	return s
}

// ToMinorUnits converts a price in major units to the integer minor units
// the processor charges, rounding half away from zero.
func ToMinorUnits(price decimal.Decimal) (int64, error) {
	if !price.IsPositive() {
		return 0, fmt.Errorf("%w: price must be positive", ErrInvalidAmount)
	}

	minor := price.Shift(2).Round(0)
	if minor.LessThan(decimal.NewFromInt(1)) || minor.GreaterThan(decimal.NewFromInt(maxMinorUnits)) {
		return 0, fmt.Errorf("%w: %s is out of range", ErrInvalidAmount, price.String())
	}
	return minor.IntPart(), nil
}

func (s *PaymentService) CreateIntent(ctx context.Context, price decimal.Decimal) (PaymentIntent, error) {
	ctx, span := stripeTracer.Start(ctx, "stripe.create_payment_intent")
	defer span.End()

	amount, err := ToMinorUnits(price)
	if err != nil {
		return PaymentIntent{}, err
	}
	span.SetAttributes(
		attribute.Int64("portal.amount_minor", amount),
		attribute.String("portal.currency", s.currency),
	)

	if s.secretKey == "" {
		return PaymentIntent{}, ErrPaymentsNotConfigured
	}

	intent, err := s.createIntent(ctx, amount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create payment intent")
		s.countIntent("error")
		return PaymentIntent{}, err
	}

	s.countIntent("ok")
	s.log.InfoContext(ctx, "payment intent created", "intent_id", intent.ID, "amount", amount, "currency", s.currency)
	return intent, nil
}

func (s *PaymentService) createIntent(ctx context.Context, amount int64) (PaymentIntent, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.secretKey).
		SetHeader("Stripe-Version", s.apiVersion).
		SetFormData(map[string]string{
			"amount":                             strconv.FormatInt(amount, 10),
			"currency":                           s.currency,
			"automatic_payment_methods[enabled]": "true",
		}).
		Post(s.baseURL + "/v1/payment_intents")
	if err != nil {
		return PaymentIntent{}, fmt.Errorf("payments: stripe http: %w", err)
	}

	if resp.IsError() {
		return PaymentIntent{}, fmt.Errorf("payments: stripe api status %d: %s", resp.StatusCode(), stripeErrorMessage(resp.Body()))
	}

	var parsed stripePaymentIntent
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return PaymentIntent{}, fmt.Errorf("payments: stripe decode: %w", err)
	}
	if parsed.ClientSecret == "" {
		return PaymentIntent{}, errors.New("payments: stripe response missing client secret")
	}

	return PaymentIntent{
		ID:           parsed.ID,
		ClientSecret: parsed.ClientSecret,
		Amount:       parsed.Amount,
		Currency:     parsed.Currency,
	}, nil
}

func (s *PaymentService) countIntent(result string) {
	if s.prom == nil {
		return
	}
	s.prom.PaymentIntentsTotal.WithLabelValues(result).Inc()
}

// stripePaymentIntent is the subset of Stripe's PaymentIntent we need.
type stripePaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func stripeErrorMessage(body []byte) string {
	var e stripeErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return string(body)
}
