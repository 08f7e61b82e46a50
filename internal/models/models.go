package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sport enumerates the supported facility sports.
type Sport string

const (
	SportFutbol  Sport = "FUTBOL"
	SportPadel   Sport = "PADEL"
	SportTenis   Sport = "TENIS"
	SportBasquet Sport = "BASQUET"
	SportOtro    Sport = "OTRO"
)

// ValidSport reports whether s is one of the known sports.
func ValidSport(s Sport) bool {
	switch s {
	case SportFutbol, SportPadel, SportTenis, SportBasquet, SportOtro:
		return true
	}
	return false
}

// Booking statuses.
const (
	StatusPending   = "pendiente"
	StatusConfirmed = "confirmada"
	StatusCancelled = "cancelada"
)

// statusTransitions lists the allowed status changes.
var statusTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
	StatusCancelled: {},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Interval is a daily recurring open window for a facility,
// expressed as HH:MM times of day. End is exclusive.
type Interval struct {
	Start string `json:"inicio"`
	End   string `json:"fin"`
}

// Validate checks that both times parse and start < end.
// Cross-midnight intervals are not supported.
func (i Interval) Validate() error {
	start, err := ParseClock(i.Start)
	if err != nil {
		return fmt.Errorf("invalid start time %q: %w", i.Start, err)
	}
	end, err := ParseClock(i.End)
	if err != nil {
		return fmt.Errorf("invalid end time %q: %w", i.End, err)
	}
	if start >= end {
		return fmt.Errorf("interval %s-%s: start must be before end", i.Start, i.End)
	}
	return nil
}

// StartMinutes returns the start as minutes since midnight, 0 on malformed input.
func (i Interval) StartMinutes() int { return ClockMinutes(i.Start) }

// EndMinutes returns the end as minutes since midnight, 0 on malformed input.
func (i Interval) EndMinutes() int { return ClockMinutes(i.End) }

// ParseClock parses an HH:MM time of day into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour: %w", err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute: %w", err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return hour*60 + minute, nil
}

// ClockMinutes converts an HH:MM string to minutes since midnight.
// Malformed values degrade to 0 (midnight); the grid favors availability
// over rejection, so this never errors.
func ClockMinutes(s string) int {
	m, err := ParseClock(s)
	if err != nil {
		return 0
	}
	return m
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Facility is a bookable sports venue.
type Facility struct {
	ID          int64      `json:"id"`
	Name        string     `json:"nombre"`
	Address     string     `json:"direccion"`
	Sport       Sport      `json:"tipo"`
	HourlyPrice float64    `json:"precio_hora"`
	Latitude    *float64   `json:"latitud,omitempty"`
	Longitude   *float64   `json:"longitud,omitempty"`
	Intervals   []Interval `json:"horarios"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate checks facility fields and all configured intervals.
func (f *Facility) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !ValidSport(f.Sport) {
		return fmt.Errorf("unknown sport %q", f.Sport)
	}
	if f.HourlyPrice <= 0 {
		return fmt.Errorf("hourly price must be positive")
	}
	for _, iv := range f.Intervals {
		if err := iv.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Booking is a reservation of a facility for one date and time range.
type Booking struct {
	ID         int64     `json:"id"`
	FacilityID int64     `json:"cancha_id"`
	ClientName string    `json:"cliente"`
	Date       time.Time `json:"fecha"`
	StartTime  string    `json:"hora_inicio"`
	EndTime    string    `json:"hora_fin"`
	Status     string    `json:"estado"`
	Amount     float64   `json:"monto"`
	Reference  string    `json:"referencia,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StartMinutes returns the booking start as minutes since midnight.
func (b *Booking) StartMinutes() int { return ClockMinutes(b.StartTime) }

// EndMinutes returns the booking end as minutes since midnight.
func (b *Booking) EndMinutes() int { return ClockMinutes(b.EndTime) }

// IsActive reports whether the booking counts for occupancy.
func (b *Booking) IsActive() bool { return b.Status != StatusCancelled }

// OverlapsRange checks for intersection with a half-open minute
// window [lo, hi). Two intervals [A, B) and [C, D) overlap iff A < D && C < B.
func (b *Booking) OverlapsRange(lo, hi int) bool {
	return b.StartMinutes() < hi && b.EndMinutes() > lo
}

// IsPlayed reports whether the booking counts as realized revenue:
// confirmed and dated strictly before today.
func (b *Booking) IsPlayed(now time.Time) bool {
	if b.Status != StatusConfirmed {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), 0, 0, 0, 0, now.Location())
	return day.Before(today)
}

// Validate checks the booking time range and status.
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.ClientName) == "" {
		return fmt.Errorf("client name is required")
	}
	if b.FacilityID == 0 {
		return fmt.Errorf("facility id is required")
	}
	start, err := ParseClock(b.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time: %w", err)
	}
	end, err := ParseClock(b.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end time: %w", err)
	}
	if start >= end {
		return fmt.Errorf("start time must be before end time")
	}
	switch b.Status {
	case StatusPending, StatusConfirmed, StatusCancelled:
	default:
		return fmt.Errorf("unknown status %q", b.Status)
	}
	return nil
}
