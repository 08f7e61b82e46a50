package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"canchero/internal/models"
)

// FacilityRepository provides facility persistence.
type FacilityRepository interface {
	CreateFacility(ctx context.Context, f *models.Facility) error
	GetFacility(ctx context.Context, id int64) (*models.Facility, error)
	ListFacilities(ctx context.Context) ([]models.Facility, error)
	UpdateFacility(ctx context.Context, f *models.Facility) error
	DeleteFacility(ctx context.Context, id int64) error
	ReplaceIntervals(ctx context.Context, facilityID int64, intervals []models.Interval) error
	HasFutureBookings(ctx context.Context, facilityID int64, today time.Time) (bool, error)
}

// FacilityService manages facilities and their opening intervals.
type FacilityService struct {
	repo   FacilityRepository
	logger *zerolog.Logger
}

// NewFacilityService creates a facility service.
func NewFacilityService(repo FacilityRepository, logger *zerolog.Logger) *FacilityService {
	return &FacilityService{repo: repo, logger: logger}
}

// Create validates and stores a new facility.
func (s *FacilityService) Create(ctx context.Context, f *models.Facility) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := validateIntervals(f.Intervals); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for i := range f.Intervals {
		f.Intervals[i] = normalizeInterval(f.Intervals[i])
	}

	if err := s.repo.CreateFacility(ctx, f); err != nil {
		return fmt.Errorf("create facility: %w", err)
	}
	s.logger.Info().Int64("facility_id", f.ID).Str("name", f.Name).Msg("facility created")
	return nil
}

// Get returns a facility by ID.
func (s *FacilityService) Get(ctx context.Context, id int64) (*models.Facility, error) {
	f, err := s.repo.GetFacility(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get facility: %w", err)
	}
	return f, nil
}

// List returns all facilities with their intervals.
func (s *FacilityService) List(ctx context.Context) ([]models.Facility, error) {
	return s.repo.ListFacilities(ctx)
}

// Update changes a facility's attributes. Intervals are managed through
// SetIntervals and are not touched here.
func (s *FacilityService) Update(ctx context.Context, f *models.Facility) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	err := s.repo.UpdateFacility(ctx, f)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update facility: %w", err)
	}
	s.logger.Info().Int64("facility_id", f.ID).Msg("facility updated")
	return nil
}

// Delete removes a facility unless it still has active bookings today or
// later.
func (s *FacilityService) Delete(ctx context.Context, id int64) error {
	today := time.Now()
	inUse, err := s.repo.HasFutureBookings(ctx, id, today)
	if err != nil {
		return fmt.Errorf("check bookings: %w", err)
	}
	if inUse {
		return ErrFacilityInUse
	}

	err = s.repo.DeleteFacility(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete facility: %w", err)
	}
	s.logger.Info().Int64("facility_id", id).Msg("facility deleted")
	return nil
}

// SetIntervals replaces a facility's opening intervals as a whole set.
// An empty set leaves the facility open all day.
func (s *FacilityService) SetIntervals(ctx context.Context, facilityID int64, intervals []models.Interval) error {
	if err := validateIntervals(intervals); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	normalized := make([]models.Interval, len(intervals))
	for i, iv := range intervals {
		normalized[i] = normalizeInterval(iv)
	}

	if _, err := s.Get(ctx, facilityID); err != nil {
		return err
	}
	if err := s.repo.ReplaceIntervals(ctx, facilityID, normalized); err != nil {
		return fmt.Errorf("replace intervals: %w", err)
	}
	s.logger.Info().
		Int64("facility_id", facilityID).
		Int("intervals", len(normalized)).
		Msg("opening intervals replaced")
	return nil
}

// CopyIntervals copies the opening intervals of one facility onto
// another.
func (s *FacilityService) CopyIntervals(ctx context.Context, fromID, toID int64) error {
	if fromID == toID {
		return fmt.Errorf("%w: source and target are the same facility", ErrValidation)
	}
	src, err := s.Get(ctx, fromID)
	if err != nil {
		return err
	}
	return s.SetIntervals(ctx, toID, src.Intervals)
}

func validateIntervals(intervals []models.Interval) error {
	for i, iv := range intervals {
		if err := iv.Validate(); err != nil {
			return fmt.Errorf("interval %d: %v", i, err)
		}
	}
	return nil
}

// normalizeInterval zero-pads clock strings so they compare and display
// consistently.
func normalizeInterval(iv models.Interval) models.Interval {
	return models.Interval{
		Start: models.FormatClock(models.ClockMinutes(iv.Start)),
		End:   models.FormatClock(models.ClockMinutes(iv.End)),
	}
}
