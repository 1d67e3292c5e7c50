package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/store"
)

type appointmentQuery struct {
	Email string `form:"email" binding:"required"`
	Date  string `form:"date" binding:"required"`
}

// GET /appointments?email=&date=
func (h *Handler) GetAppointments(c *gin.Context) {
	var q appointmentQuery
	if !BindQuery(c, &q) {
		return
	}

	date, err := models.NormalizeDate(q.Date)
	if err != nil {
		RespondBadRequest(c, "Invalid date", gin.H{"field": "date", "value": q.Date})
		return
	}

	appointments, err := h.appointments.FindBySlot(c.Request.Context(), q.Email, date)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "find appointments failed", "err", err, "request_id", requestIDFrom(c))
		RespondInternal(c, "Failed to retrieve appointments")
		return
	}
	if appointments == nil {
		appointments = make([]models.Appointment, 0)
	}

	c.JSON(http.StatusOK, appointments)
}

// GET /appointments/:id
func (h *Handler) GetAppointment(c *gin.Context) {
	apt, err := h.appointments.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondAppointmentError(c, err, "Failed to retrieve appointment")
		return
	}

	c.JSON(http.StatusOK, apt)
}

// POST /appointments
func (h *Handler) CreateAppointment(c *gin.Context) {
	var apt models.Appointment
	if !BindJSON(c, &apt) {
		return
	}

	date, err := models.NormalizeDate(apt.Date)
	if err != nil {
		RespondBadRequest(c, "Invalid date", gin.H{"field": "date", "value": apt.Date})
		return
	}
	apt.Date = date

	id, err := h.appointments.Create(c.Request.Context(), apt)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "create appointment failed", "err", err, "request_id", requestIDFrom(c))
		RespondInternal(c, "Failed to create appointment")
		return
	}
	apt.ID = id

	if h.notifier != nil {
		h.notifier.SendBookingConfirmation(apt)
	}

	c.JSON(http.StatusCreated, gin.H{"insertedId": id.Hex()})
}

// PUT /appointments/:id attaches the processor's payment confirmation.
func (h *Handler) AttachPayment(c *gin.Context) {
	var payment models.Payment
	if !BindJSON(c, &payment) {
		return
	}

	id := c.Param("id")
	res, err := h.appointments.AttachPayment(c.Request.Context(), id, payment)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.countAttach("not_found")
		} else if !errors.Is(err, store.ErrInvalidID) {
			h.countAttach("error")
		}
		h.respondAppointmentError(c, err, "Failed to attach payment")
		return
	}

	if res.Overwrote() {
		h.countAttach("overwrite")
		h.log.WarnContext(c.Request.Context(), "payment replaced on appointment",
			"appointment_id", id,
			"previous_transaction", res.Previous.Transaction,
			"transaction", payment.Transaction,
			"request_id", requestIDFrom(c),
		)
	} else {
		h.countAttach("first")
	}

	c.JSON(http.StatusOK, store.UpdateResult{MatchedCount: 1, ModifiedCount: 1})
}

func (h *Handler) respondAppointmentError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		RespondBadRequest(c, "Invalid appointment ID", gin.H{"field": "id", "value": c.Param("id")})
	case errors.Is(err, store.ErrNotFound):
		RespondNotFound(c, "Appointment not found")
	default:
		h.log.ErrorContext(c.Request.Context(), message, "err", err, "request_id", requestIDFrom(c))
		RespondInternal(c, message)
	}
}

func (h *Handler) countAttach(outcome string) {
	if h.prom == nil {
		return
	}
	h.prom.PaymentAttachTotal.WithLabelValues(outcome).Inc()
}
