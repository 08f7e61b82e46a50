package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"canchero/internal/db"
	"canchero/internal/events"
	"canchero/internal/metrics"
	"canchero/internal/models"
)

// BookingRepository provides booking persistence.
type BookingRepository interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	ListBookings(ctx context.Context, filter db.BookingFilter) ([]models.Booking, error)
	HasOverlappingBooking(ctx context.Context, facilityID int64, date time.Time, start, end string) (bool, error)
	GetFacility(ctx context.Context, id int64) (*models.Facility, error)
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(event events.Event)
}

// BookingService manages the booking lifecycle.
type BookingService struct {
	repo           BookingRepository
	bus            EventPublisher
	maxAdvanceDays int
	logger         *zerolog.Logger
}

// NewBookingService creates a booking service. maxAdvanceDays bounds how
// far ahead a booking may be placed; zero disables the bound.
func NewBookingService(repo BookingRepository, bus EventPublisher, maxAdvanceDays int, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:           repo,
		bus:            bus,
		maxAdvanceDays: maxAdvanceDays,
		logger:         logger,
	}
}

// ValidateBookingDate rejects dates in the past or beyond the advance
// window.
func (s *BookingService) ValidateBookingDate(date time.Time) error {
	today := time.Now()
	todayKey := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	dateKey := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.Local)

	if dateKey.Before(todayKey) {
		return fmt.Errorf("%w: date is in the past", ErrValidation)
	}
	if s.maxAdvanceDays > 0 && dateKey.After(todayKey.AddDate(0, 0, s.maxAdvanceDays)) {
		return fmt.Errorf("%w: date is more than %d days ahead", ErrValidation, s.maxAdvanceDays)
	}
	return nil
}

// Create validates a booking, rejects overlaps with active bookings on
// the same facility and date, and stores it as pending.
func (s *BookingService) Create(ctx context.Context, b *models.Booking) error {
	if b.Status == "" {
		b.Status = models.StatusPending
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.ValidateBookingDate(b.Date); err != nil {
		return err
	}
	b.StartTime = models.FormatClock(models.ClockMinutes(b.StartTime))
	b.EndTime = models.FormatClock(models.ClockMinutes(b.EndTime))

	facility, err := s.repo.GetFacility(ctx, b.FacilityID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get facility: %w", err)
	}
	if !withinOpeningHours(facility, b) {
		return fmt.Errorf("%w: outside opening hours", ErrValidation)
	}

	taken, err := s.repo.HasOverlappingBooking(ctx, b.FacilityID, b.Date, b.StartTime, b.EndTime)
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if taken {
		metrics.IncSlotConflict()
		return ErrSlotTaken
	}

	if b.Amount == 0 {
		duration := float64(b.EndMinutes()-b.StartMinutes()) / 60.0
		b.Amount = facility.HourlyPrice * duration
	}
	if b.Reference == "" {
		b.Reference = uuid.NewString()
	}

	if err := s.repo.CreateBooking(ctx, b); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	metrics.IncBookingCreated(b.Status)
	s.bus.Publish(events.NewBookingEvent(events.BookingCreated, b))
	s.logger.Info().
		Int64("booking_id", b.ID).
		Int64("facility_id", b.FacilityID).
		Str("date", b.Date.Format("2006-01-02")).
		Str("start", b.StartTime).
		Str("end", b.EndTime).
		Msg("booking created")
	return nil
}

// Get returns a booking by ID.
func (s *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// List returns bookings matching the filter.
func (s *BookingService) List(ctx context.Context, filter db.BookingFilter) ([]models.Booking, error) {
	return s.repo.ListBookings(ctx, filter)
}

// Confirm moves a pending booking to confirmed.
func (s *BookingService) Confirm(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := s.transition(ctx, id, models.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	metrics.IncBookingConfirmed()
	s.bus.Publish(events.NewBookingEvent(events.BookingConfirmed, b))
	s.logger.Info().Int64("booking_id", id).Msg("booking confirmed")
	return b, nil
}

// Cancel moves a pending or confirmed booking to cancelled. Cancelled
// bookings free their slot but remain in history.
func (s *BookingService) Cancel(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := s.transition(ctx, id, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	metrics.IncBookingCancelled()
	s.bus.Publish(events.NewBookingEvent(events.BookingCancelled, b))
	s.logger.Info().Int64("booking_id", id).Msg("booking cancelled")
	return b, nil
}

func (s *BookingService) transition(ctx context.Context, id int64, to string) (*models.Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(b.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
	}
	if err := s.repo.UpdateBookingStatus(ctx, id, to); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	b.Status = to
	return b, nil
}

// withinOpeningHours reports whether the booking window fits inside one
// of the facility's opening intervals. A facility without intervals is
// open all day.
func withinOpeningHours(f *models.Facility, b *models.Booking) bool {
	if len(f.Intervals) == 0 {
		return true
	}
	start, end := b.StartMinutes(), b.EndMinutes()
	for _, iv := range f.Intervals {
		if start >= iv.StartMinutes() && end <= iv.EndMinutes() {
			return true
		}
	}
	return false
}
