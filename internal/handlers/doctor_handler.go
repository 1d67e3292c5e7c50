package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/storage"
)

// MaxImageBytes bounds a doctor's profile image.
const MaxImageBytes = 5 << 20

var errImageTooLarge = errors.New("image too large")

type doctorForm struct {
	Name  string `form:"name" binding:"required"`
	Email string `form:"email" binding:"omitempty,email"`
}

// POST /doctors (multipart: name, email, image)
func (h *Handler) CreateDoctor(c *gin.Context) {
	// Bodies past the router's cap fail while parsing, before the image can
	// be measured on its own.
	if err := c.Request.ParseMultipartForm(MaxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondImageTooLarge(c)
			return
		}
	}

	var form doctorForm
	if !BindForm(c, &form) {
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		RespondBadRequest(c, "Invalid form data", gin.H{"fields": []FieldError{{
			Field: "image", Rule: "required", Message: validationMessage("required", ""),
		}}})
		return
	}

	data, err := readImage(fh)
	if err != nil {
		if errors.Is(err, errImageTooLarge) {
			respondImageTooLarge(c)
			return
		}
		RespondBadRequest(c, "Could not read image", nil)
		return
	}

	doctor := models.Doctor{
		ID:          primitive.NewObjectID(),
		Name:        form.Name,
		Email:       form.Email,
		Image:       data,
		ContentType: fh.Header.Get("Content-Type"),
	}

	if h.images != nil {
		key := storage.ImageKey(doctor.ID, fh.Filename)
		if err := h.images.PutImage(c.Request.Context(), key, data, doctor.ContentType); err != nil {
			h.log.WarnContext(c.Request.Context(), "image mirror failed, keeping inline copy only",
				"err", err, "key", key, "request_id", requestIDFrom(c))
		} else {
			doctor.ImageKey = key
		}
	}

	id, err := h.doctors.Insert(c.Request.Context(), doctor)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "create doctor failed", "err", err, "request_id", requestIDFrom(c))
		RespondInternal(c, "Failed to register doctor")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"insertedId": id.Hex()})
}

// GET /doctors
func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.doctors.List(c.Request.Context())
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "list doctors failed", "err", err, "request_id", requestIDFrom(c))
		RespondInternal(c, "Failed to retrieve doctors")
		return
	}
	if doctors == nil {
		doctors = make([]models.Doctor, 0)
	}

	c.JSON(http.StatusOK, doctors)
}

func respondImageTooLarge(c *gin.Context) {
	RespondError(c, http.StatusRequestEntityTooLarge, "image_too_large",
		fmt.Sprintf("Image must be at most %d bytes", MaxImageBytes), nil)
}

func readImage(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageBytes {
		return nil, errImageTooLarge
	}
	return data, nil
}
