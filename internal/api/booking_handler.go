package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/metrics"
	"tidalpower/fitness-studio/internal/service"
)

type BookingHandler struct {
	bookingService service.BookingService
	loc            *time.Location
	metrics        *metrics.Manager
}

func NewBookingHandler(bookingService service.BookingService, loc *time.Location, mm *metrics.Manager) *BookingHandler {
	return &BookingHandler{bookingService: bookingService, loc: loc, metrics: mm}
}

type BookClassRequest struct {
	ClassID string `json:"classId" binding:"required"`
	Date    string `json:"date" binding:"required"`
	// ClientID lets staff book on behalf of a client.
	ClientID string `json:"clientId"`
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return "booked"
	case errors.Is(err, service.ErrClassFull):
		return "full"
	case errors.Is(err, service.ErrAlreadyBooked):
		return "duplicate"
	case errors.Is(err, service.ErrBookingClosed):
		return "closed"
	case errors.Is(err, service.ErrClassNotScheduled):
		return "not_scheduled"
	}
	return "rejected"
}

// BookClass godoc
// @Summary Book a spot in one class occurrence
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param booking body BookClassRequest true "Class and date (YYYY-MM-DD)"
// @Success 201 {object} domain.Booking
// @Failure 409 {object} gin.H "Full, already booked or already started"
// @Failure 422 {object} gin.H "Class does not run that day"
// @Router /bookings [post]
func (h *BookingHandler) BookClass(c *gin.Context) {
	var req BookClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	classID, ok := optionalObjectID(c, req.ClassID, "classId")
	if !ok {
		return
	}
	date, ok := parseDate(c, req.Date, "date", h.loc)
	if !ok {
		return
	}
	var clientID *primitive.ObjectID
	if req.ClientID != "" {
		id, ok := optionalObjectID(c, req.ClientID, "clientId")
		if !ok {
			return
		}
		clientID = &id
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.BookClass(c.Request.Context(), p, classID, date, clientID)
	h.metrics.CounterBookings.WithLabelValues(bookingOutcome(err)).Inc()
	if err != nil {
		respondError(c, err, "Failed to book class.")
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	booking, err := h.bookingService.CancelBooking(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err, "Failed to cancel booking.")
		return
	}
	h.metrics.CounterBookings.WithLabelValues("cancelled").Inc()
	c.JSON(http.StatusOK, booking)
}

// ListBookings lists bookings in [from, to]. Clients see their own; staff
// pass ?clientId=.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	clientID, ok := optionalObjectID(c, c.Query("clientId"), "clientId")
	if !ok {
		return
	}
	if clientID.IsZero() {
		clientID = p.UserID
	}

	today := time.Now().In(h.loc)
	from, to := today, today.AddDate(0, 0, 30)
	if raw := c.Query("from"); raw != "" {
		if from, ok = parseDate(c, raw, "from", h.loc); !ok {
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, ok = parseDate(c, raw, "to", h.loc); !ok {
			return
		}
	}
	if to.Before(from) {
		abortWithError(c, http.StatusBadRequest, "to must not be before from")
		return
	}

	bookings, err := h.bookingService.ListBookings(c.Request.Context(), p, clientID, from, to)
	if err != nil {
		respondError(c, err, "Failed to list bookings.")
		return
	}
	c.JSON(http.StatusOK, bookings)
}
