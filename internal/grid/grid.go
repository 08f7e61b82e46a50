// Package grid computes the slot occupancy grid for a facility:
// which one-hour cells are closed, free or occupied, given the
// facility's configured open intervals and the bookings of a date range.
// Everything here is pure computation over immutable inputs.
package grid

import (
	"fmt"
	"sort"
	"time"

	"canchero/internal/models"
)

// Display window of the grid: start hours 06:00 through 23:00 inclusive.
const (
	DefaultOpenHour  = 6
	DefaultCloseHour = 23

	slotMinutes = 60
)

// CellState classifies a grid cell.
type CellState string

const (
	StateClosed   CellState = "closed"
	StateFree     CellState = "free"
	StateOccupied CellState = "occupied"
)

// Occupancy describes how a booking covers a single slot.
type Occupancy struct {
	Booking         *models.Booking
	OccupiedPercent float64
	IsStart         bool
}

// Cell is one (date, hour) entry of the rendered grid.
type Cell struct {
	Date            string    `json:"fecha"`
	Hour            string    `json:"hora"`
	State           CellState `json:"estado"`
	BookingID       int64     `json:"reserva_id,omitempty"`
	ClientName      string    `json:"cliente,omitempty"`
	BookingStatus   string    `json:"estado_reserva,omitempty"`
	Amount          float64   `json:"monto,omitempty"`
	OccupiedPercent float64   `json:"ocupacion,omitempty"`
	IsStart         bool      `json:"es_inicio,omitempty"`
}

// LocalDateKey formats t as YYYY-MM-DD from its local date components.
// A UTC-normalized ISO format shifts the date near midnight for viewers
// away from UTC; building the key from wall-clock fields keeps lookups
// stable across offsets.
func LocalDateKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// WeekOf returns the Monday-to-Sunday week containing anchor, shifted
// by offset whole weeks. Sunday counts as the last day of its week.
func WeekOf(anchor time.Time, offset int) [7]time.Time {
	back := int(anchor.Weekday()) - 1
	if anchor.Weekday() == time.Sunday {
		back = 6
	}
	monday := anchor.AddDate(0, 0, -back+offset*7)

	var days [7]time.Time
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// Hours returns the display hour labels from openHour through closeHour
// inclusive, "06:00" .. "23:00" by default.
func Hours(openHour, closeHour int) []string {
	if openHour < 0 || closeHour > 23 || openHour > closeHour {
		openHour, closeHour = DefaultOpenHour, DefaultCloseHour
	}
	labels := make([]string, 0, closeHour-openHour+1)
	for h := openHour; h <= closeHour; h++ {
		labels = append(labels, fmt.Sprintf("%02d:00", h))
	}
	return labels
}

// IsSlotOpen reports whether the slot starting at hourLabel falls inside
// one of the facility's configured intervals. A facility with no
// intervals is open at every hour (fail-open). Interval containment is
// half-open: a slot starting exactly at an interval's end is closed.
func IsSlotOpen(f *models.Facility, hourLabel string) bool {
	if len(f.Intervals) == 0 {
		return true
	}
	start := models.ClockMinutes(hourLabel)
	for _, iv := range f.Intervals {
		if start >= iv.StartMinutes() && start < iv.EndMinutes() {
			return true
		}
	}
	return false
}

// SlotOccupancy finds the booking occupying the one-hour slot at
// hourLabel on date for the facility, along with how much of the slot
// it covers. Cancelled bookings never occupy a slot.
//
// Upstream booking creation rejects overlaps, so at most one active
// booking should match; if that invariant is ever violated the lowest
// booking ID wins, which keeps the result deterministic (earliest
// created booking).
func SlotOccupancy(f *models.Facility, bookings []models.Booking, date time.Time, hourLabel string) Occupancy {
	slotStart := models.ClockMinutes(hourLabel)
	slotEnd := slotStart + slotMinutes
	dateKey := LocalDateKey(date)

	var match *models.Booking
	for i := range bookings {
		b := &bookings[i]
		if b.FacilityID != f.ID || !b.IsActive() {
			continue
		}
		if LocalDateKey(b.Date) != dateKey {
			continue
		}
		if !b.OverlapsRange(slotStart, slotEnd) {
			continue
		}
		if match == nil || b.ID < match.ID {
			match = b
		}
	}
	if match == nil {
		return Occupancy{}
	}

	overlapStart := max(slotStart, match.StartMinutes())
	overlapEnd := min(slotEnd, match.EndMinutes())
	percent := float64(overlapEnd-overlapStart) / slotMinutes * 100

	// Both checks cover formatting variance such as trailing seconds.
	isStart := clockPrefix(match.StartTime) == clockPrefix(hourLabel) ||
		(match.StartMinutes() >= slotStart && match.StartMinutes() < slotEnd)

	return Occupancy{Booking: match, OccupiedPercent: percent, IsStart: isStart}
}

// CellFor derives the rendering state of a single (date, hour) cell.
func CellFor(f *models.Facility, bookings []models.Booking, date time.Time, hourLabel string) Cell {
	cell := Cell{Date: LocalDateKey(date), Hour: hourLabel}

	if !IsSlotOpen(f, hourLabel) {
		cell.State = StateClosed
		return cell
	}

	occ := SlotOccupancy(f, bookings, date, hourLabel)
	if occ.Booking == nil {
		cell.State = StateFree
		return cell
	}

	cell.State = StateOccupied
	cell.BookingID = occ.Booking.ID
	cell.ClientName = occ.Booking.ClientName
	cell.BookingStatus = occ.Booking.Status
	cell.Amount = occ.Booking.Amount
	cell.OccupiedPercent = occ.OccupiedPercent
	cell.IsStart = occ.IsStart
	return cell
}

// BuildGrid computes cells for every (day, hour) combination, days in
// input order, hours ascending within each day.
func BuildGrid(f *models.Facility, bookings []models.Booking, days []time.Time, hours []string) []Cell {
	cells := make([]Cell, 0, len(days)*len(hours))
	sorted := append([]string(nil), hours...)
	sort.Strings(sorted)
	for _, day := range days {
		for _, hour := range sorted {
			cells = append(cells, CellFor(f, bookings, day, hour))
		}
	}
	return cells
}

// clockPrefix truncates a time string to HH:MM.
func clockPrefix(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}
