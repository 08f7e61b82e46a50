package service

import "errors"

var (
	// ErrNotFound is returned when a facility or booking does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlotTaken is returned when a booking overlaps an active booking
	// on the same facility and date.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrInvalidTransition is returned when a status change is not
	// allowed from the booking's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation is returned when input fails validation.
	ErrValidation = errors.New("validation failed")

	// ErrFacilityInUse is returned when deleting a facility that still
	// has active bookings today or later.
	ErrFacilityInUse = errors.New("facility has active bookings")
)
