package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

const textbeltEndpoint = "https://textbelt.com/text"

// NotificationService sends booking confirmations by SMS through Textbelt.
// Without an API key it does nothing.
type NotificationService struct {
	apiKey   string
	endpoint string
	client   *resty.Client
	log      *slog.Logger
	wg       sync.WaitGroup
}

func NewNotificationService(apiKey string, log *slog.Logger) *NotificationService {
	return &NotificationService{
		apiKey:   apiKey,
		endpoint: textbeltEndpoint,
		client:   resty.New().SetTimeout(10 * time.Second),
		log:      log,
	}
}

// WithEndpoint overrides the Textbelt URL (for testing).
func (s *NotificationService) WithEndpoint(url string) *NotificationService {
	s.endpoint = url
	return s
}

func (s *NotificationService) Enabled() bool {
	return s != nil && s.apiKey != ""
}

// SendBookingConfirmation sends in the background so it never delays the
// booking response. Wait blocks until queued sends finish.
func (s *NotificationService) SendBookingConfirmation(apt models.Appointment) {
	if !s.Enabled() {
		return
	}
	if apt.Phone == "" {
		s.log.Debug("sms not sent: appointment has no phone number", "appointment_id", apt.ID.Hex())
		return
	}

	body := bookingMessage(apt)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.sendSMS(ctx, apt.Phone, body); err != nil {
			s.log.Warn("booking sms failed", "appointment_id", apt.ID.Hex(), "err", err)
			return
		}
		s.log.Info("booking sms sent", "appointment_id", apt.ID.Hex())
	}()
}

func (s *NotificationService) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

func bookingMessage(apt models.Appointment) string {
	service := apt.ServiceName
	if service == "" {
		service = "Appointment"
	}
	when := apt.Date
	if apt.Time != "" {
		when += " at " + apt.Time
	}
	return fmt.Sprintf("Appointment Confirmed: %s on %s.", service, when)
}

func (s *NotificationService) sendSMS(ctx context.Context, phone, message string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"phone":   phone,
			"message": message,
			"key":     s.apiKey,
		}).
		Post(s.endpoint)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("textbelt decode (status %d): %w", resp.StatusCode(), err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt rejected message: %s", result.Error)
	}
	return nil
}
