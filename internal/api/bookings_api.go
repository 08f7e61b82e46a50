package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"canchero/internal/db"
	"canchero/internal/models"
)

// MaxBookingDaysRange caps the date span of booking listings.
const MaxBookingDaysRange = 90

// BookingRequest is the request body for POST /api/bookings.
type BookingRequest struct {
	FacilityID int64   `json:"cancha_id"`
	ClientName string  `json:"cliente"`
	Date       string  `json:"fecha"` // Format: YYYY-MM-DD
	StartTime  string  `json:"hora_inicio"`
	EndTime    string  `json:"hora_fin"`
	Amount     float64 `json:"monto,omitempty"`
}

// handleBookings serves /api/bookings.
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBookings(w, r)
	case http.MethodPost:
		s.createBooking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	filter, err := bookingFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := s.bookings.List(r.Context(), filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("list bookings")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservas": bookings})
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fecha format; expected YYYY-MM-DD")
		return
	}

	booking := &models.Booking{
		FacilityID: req.FacilityID,
		ClientName: req.ClientName,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Amount:     req.Amount,
	}
	if err := s.bookings.Create(r.Context(), booking); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// handleBookingAction serves /api/bookings/{id} and the confirm/cancel
// actions.
func (s *HTTPServer) handleBookingAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/bookings/"), "/")
	id, err := parseID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		booking, err := s.bookings.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	case len(parts) == 2 && parts[1] == "confirm":
		s.transitionBooking(w, r, id, s.bookings.Confirm)
	case len(parts) == 2 && parts[1] == "cancel":
		s.transitionBooking(w, r, id, s.bookings.Cancel)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) transitionBooking(
	w http.ResponseWriter,
	r *http.Request,
	id int64,
	apply func(ctx context.Context, id int64) (*models.Booking, error),
) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	booking, err := apply(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func bookingFilterFromQuery(r *http.Request) (db.BookingFilter, error) {
	var filter db.BookingFilter
	q := r.URL.Query()

	if raw := q.Get("facility_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid facility_id")
		}
		filter.FacilityID = id
	}
	if raw := q.Get("status"); raw != "" {
		switch raw {
		case models.StatusPending, models.StatusConfirmed, models.StatusCancelled:
			filter.Status = raw
		default:
			return filter, fmt.Errorf("invalid status %q", raw)
		}
	}

	var err error
	if raw := q.Get("date_from"); raw != "" {
		filter.DateFrom, err = time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid date_from format; expected YYYY-MM-DD")
		}
	}
	if raw := q.Get("date_to"); raw != "" {
		filter.DateTo, err = time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid date_to format; expected YYYY-MM-DD")
		}
	}
	if !filter.DateFrom.IsZero() && !filter.DateTo.IsZero() {
		if filter.DateFrom.After(filter.DateTo) {
			return filter, fmt.Errorf("date_from must be before or equal to date_to")
		}
		if int(filter.DateTo.Sub(filter.DateFrom).Hours()/24) > MaxBookingDaysRange {
			return filter, fmt.Errorf("date range exceeds maximum of %d days", MaxBookingDaysRange)
		}
	}
	return filter, nil
}
