package grid

import (
	"testing"
	"time"

	"canchero/internal/models"
)

func facilityWith(intervals ...models.Interval) *models.Facility {
	return &models.Facility{
		ID:          1,
		Name:        "Cancha Central",
		Sport:       models.SportFutbol,
		HourlyPrice: 180,
		Intervals:   intervals,
	}
}

func TestLocalDateKey(t *testing.T) {
	tests := []struct {
		name string
		time time.Time
		want string
	}{
		{
			name: "plain date",
			time: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
			want: "2026-03-15",
		},
		{
			name: "late evening in western offset stays on its local day",
			time: time.Date(2026, 3, 15, 23, 30, 0, 0, time.FixedZone("ART", -3*3600)),
			want: "2026-03-15",
		},
		{
			name: "early morning in eastern offset stays on its local day",
			time: time.Date(2026, 3, 15, 0, 10, 0, 0, time.FixedZone("JST", 9*3600)),
			want: "2026-03-15",
		},
		{
			name: "single digit month and day are padded",
			time: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			want: "2026-01-05",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LocalDateKey(tt.time); got != tt.want {
				t.Errorf("LocalDateKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocalDateKey_StableAcrossOffsets(t *testing.T) {
	// The same wall-clock moment rendered in any fixed offset must key to
	// that offset's local day, never the UTC day.
	for offset := -12; offset <= 12; offset++ {
		zone := time.FixedZone("test", offset*3600)
		local := time.Date(2026, 6, 1, 0, 30, 0, 0, zone)
		if got := LocalDateKey(local); got != "2026-06-01" {
			t.Errorf("offset %+d: LocalDateKey() = %q, want 2026-06-01", offset, got)
		}
	}
}

func TestWeekOf(t *testing.T) {
	// 2026-03-11 is a Wednesday.
	wednesday := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	week := WeekOf(wednesday, 0)
	if week[0].Weekday() != time.Monday {
		t.Fatalf("week starts on %v, want Monday", week[0].Weekday())
	}
	if week[6].Weekday() != time.Sunday {
		t.Fatalf("week ends on %v, want Sunday", week[6].Weekday())
	}
	if LocalDateKey(week[0]) != "2026-03-09" {
		t.Errorf("monday = %s, want 2026-03-09", LocalDateKey(week[0]))
	}
	if LocalDateKey(week[2]) != LocalDateKey(wednesday) {
		t.Errorf("anchor not at index 2: got %s", LocalDateKey(week[2]))
	}
	for i := 1; i < 7; i++ {
		if !week[i].After(week[i-1]) {
			t.Errorf("days not ascending at index %d", i)
		}
	}
}

func TestWeekOf_Offsets(t *testing.T) {
	wednesday := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	current := WeekOf(wednesday, 0)
	next := WeekOf(wednesday, 1)
	prev := WeekOf(wednesday, -1)

	for i := 0; i < 7; i++ {
		if want := current[i].AddDate(0, 0, 7); LocalDateKey(next[i]) != LocalDateKey(want) {
			t.Errorf("next[%d] = %s, want %s", i, LocalDateKey(next[i]), LocalDateKey(want))
		}
		if want := current[i].AddDate(0, 0, -7); LocalDateKey(prev[i]) != LocalDateKey(want) {
			t.Errorf("prev[%d] = %s, want %s", i, LocalDateKey(prev[i]), LocalDateKey(want))
		}
		if next[i].Weekday() != current[i].Weekday() {
			t.Errorf("weekday mismatch at %d", i)
		}
	}
}

func TestWeekOf_SundayAnchor(t *testing.T) {
	// 2026-03-15 is a Sunday: its week starts 6 days earlier.
	sunday := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	week := WeekOf(sunday, 0)

	if LocalDateKey(week[0]) != "2026-03-09" {
		t.Errorf("monday = %s, want 2026-03-09", LocalDateKey(week[0]))
	}
	if LocalDateKey(week[6]) != "2026-03-15" {
		t.Errorf("sunday = %s, want 2026-03-15", LocalDateKey(week[6]))
	}
}

func TestHours(t *testing.T) {
	labels := Hours(DefaultOpenHour, DefaultCloseHour)
	if len(labels) != 18 {
		t.Fatalf("expected 18 hour labels, got %d", len(labels))
	}
	if labels[0] != "06:00" || labels[len(labels)-1] != "23:00" {
		t.Errorf("unexpected bounds: %s .. %s", labels[0], labels[len(labels)-1])
	}

	// Out-of-range configuration falls back to the default window.
	fallback := Hours(25, 3)
	if len(fallback) != 18 {
		t.Errorf("expected default window on bad config, got %d labels", len(fallback))
	}
}

func TestIsSlotOpen(t *testing.T) {
	tests := []struct {
		name      string
		intervals []models.Interval
		hour      string
		want      bool
	}{
		{"no intervals is fail-open", nil, "03:00", true},
		{"inside interval", []models.Interval{{Start: "09:00", End: "12:00"}}, "10:00", true},
		{"interval start is open", []models.Interval{{Start: "09:00", End: "12:00"}}, "09:00", true},
		{"interval end is closed", []models.Interval{{Start: "09:00", End: "12:00"}}, "12:00", false},
		{"just before end is open", []models.Interval{{Start: "09:00", End: "12:00"}}, "11:59", true},
		{"outside interval", []models.Interval{{Start: "09:00", End: "12:00"}}, "15:00", false},
		{"second interval matches", []models.Interval{{Start: "09:00", End: "12:00"}, {Start: "16:00", End: "23:00"}}, "18:00", true},
		{"malformed hour treated as midnight", []models.Interval{{Start: "00:00", End: "01:00"}}, "x", true},
		{"malformed hour closed when midnight closed", []models.Interval{{Start: "09:00", End: "12:00"}}, "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := facilityWith(tt.intervals...)
			if got := IsSlotOpen(f, tt.hour); got != tt.want {
				t.Errorf("IsSlotOpen(%q) = %v, want %v", tt.hour, got, tt.want)
			}
		})
	}
}

func TestSlotOccupancy(t *testing.T) {
	f := facilityWith()
	date := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	booking := func(id int64, start, end, status string) models.Booking {
		return models.Booking{
			ID:         id,
			FacilityID: f.ID,
			ClientName: "Juan",
			Date:       date,
			StartTime:  start,
			EndTime:    end,
			Status:     status,
		}
	}

	tests := []struct {
		name        string
		bookings    []models.Booking
		hour        string
		wantID      int64
		wantPercent float64
		wantStart   bool
	}{
		{
			name:        "full hour booking fills its slot",
			bookings:    []models.Booking{booking(1, "18:00", "19:00", models.StatusConfirmed)},
			hour:        "18:00",
			wantID:      1,
			wantPercent: 100,
			wantStart:   true,
		},
		{
			name:     "no overlap past booking end",
			bookings: []models.Booking{booking(1, "18:00", "19:00", models.StatusConfirmed)},
			hour:     "19:00",
		},
		{
			name:        "half hour booking covers 50 percent",
			bookings:    []models.Booking{booking(2, "18:30", "19:00", models.StatusPending)},
			hour:        "18:00",
			wantID:      2,
			wantPercent: 50,
			wantStart:   true,
		},
		{
			name:        "two hour booking continues without start flag",
			bookings:    []models.Booking{booking(3, "18:00", "20:00", models.StatusConfirmed)},
			hour:        "19:00",
			wantID:      3,
			wantPercent: 100,
			wantStart:   false,
		},
		{
			name:     "cancelled booking never occupies",
			bookings: []models.Booking{booking(4, "18:00", "19:00", models.StatusCancelled)},
			hour:     "18:00",
		},
		{
			name: "lowest id wins when data violates the no-overlap invariant",
			bookings: []models.Booking{
				booking(9, "18:00", "19:00", models.StatusConfirmed),
				booking(5, "18:30", "19:30", models.StatusPending),
			},
			hour:        "18:00",
			wantID:      5,
			wantPercent: 50,
			wantStart:   true,
		},
		{
			name: "other facility ignored",
			bookings: []models.Booking{{
				ID: 7, FacilityID: 99, Date: date,
				StartTime: "18:00", EndTime: "19:00", Status: models.StatusConfirmed,
			}},
			hour: "18:00",
		},
		{
			name: "other date ignored",
			bookings: []models.Booking{{
				ID: 8, FacilityID: f.ID, Date: date.AddDate(0, 0, 1),
				StartTime: "18:00", EndTime: "19:00", Status: models.StatusConfirmed,
			}},
			hour: "18:00",
		},
		{
			name:        "trailing seconds still detected as start",
			bookings:    []models.Booking{booking(10, "18:00:00", "19:00:00", models.StatusConfirmed)},
			hour:        "18:00",
			wantID:      10,
			wantPercent: 100,
			wantStart:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ := SlotOccupancy(f, tt.bookings, date, tt.hour)
			if tt.wantID == 0 {
				if occ.Booking != nil {
					t.Fatalf("expected empty occupancy, got booking %d", occ.Booking.ID)
				}
				if occ.OccupiedPercent != 0 || occ.IsStart {
					t.Errorf("empty occupancy must be zero-valued: %+v", occ)
				}
				return
			}
			if occ.Booking == nil {
				t.Fatal("expected a booking, got none")
			}
			if occ.Booking.ID != tt.wantID {
				t.Errorf("booking id = %d, want %d", occ.Booking.ID, tt.wantID)
			}
			if occ.OccupiedPercent != tt.wantPercent {
				t.Errorf("occupied percent = %v, want %v", occ.OccupiedPercent, tt.wantPercent)
			}
			if occ.IsStart != tt.wantStart {
				t.Errorf("isStart = %v, want %v", occ.IsStart, tt.wantStart)
			}
		})
	}
}

func TestSlotOccupancy_Idempotent(t *testing.T) {
	f := facilityWith(models.Interval{Start: "09:00", End: "23:00"})
	date := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	bookings := []models.Booking{{
		ID: 1, FacilityID: f.ID, Date: date,
		StartTime: "18:15", EndTime: "19:00", Status: models.StatusConfirmed,
	}}

	first := SlotOccupancy(f, bookings, date, "18:00")
	second := SlotOccupancy(f, bookings, date, "18:00")

	if first.OccupiedPercent != second.OccupiedPercent ||
		first.IsStart != second.IsStart ||
		first.Booking.ID != second.Booking.ID {
		t.Errorf("repeat call differs: %+v vs %+v", first, second)
	}
	if first.OccupiedPercent != 75 {
		t.Errorf("45 minute overlap should be 75%%, got %v", first.OccupiedPercent)
	}
}

func TestCellFor(t *testing.T) {
	f := facilityWith(models.Interval{Start: "09:00", End: "21:00"})
	date := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	bookings := []models.Booking{{
		ID: 1, FacilityID: f.ID, ClientName: "María García", Date: date,
		StartTime: "18:00", EndTime: "19:00", Status: models.StatusPending, Amount: 200,
	}}

	closed := CellFor(f, bookings, date, "22:00")
	if closed.State != StateClosed {
		t.Errorf("22:00 should be closed, got %s", closed.State)
	}

	free := CellFor(f, bookings, date, "10:00")
	if free.State != StateFree {
		t.Errorf("10:00 should be free, got %s", free.State)
	}

	occupied := CellFor(f, bookings, date, "18:00")
	if occupied.State != StateOccupied {
		t.Fatalf("18:00 should be occupied, got %s", occupied.State)
	}
	if occupied.BookingStatus != models.StatusPending || occupied.ClientName != "María García" {
		t.Errorf("unexpected occupied cell: %+v", occupied)
	}
	if occupied.OccupiedPercent != 100 || !occupied.IsStart {
		t.Errorf("expected full start cell, got %+v", occupied)
	}
}

func TestBuildGrid(t *testing.T) {
	f := facilityWith()
	anchor := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	week := WeekOf(anchor, 0)
	hours := Hours(DefaultOpenHour, DefaultCloseHour)

	cells := BuildGrid(f, nil, week[:], hours)
	if len(cells) != 7*18 {
		t.Fatalf("expected %d cells, got %d", 7*18, len(cells))
	}

	// No intervals configured: everything open, nothing booked.
	for _, c := range cells {
		if c.State != StateFree {
			t.Fatalf("cell %s %s: state %s, want free", c.Date, c.Hour, c.State)
		}
	}

	// First cell is Monday 06:00, last is Sunday 23:00.
	if cells[0].Date != LocalDateKey(week[0]) || cells[0].Hour != "06:00" {
		t.Errorf("first cell = %s %s", cells[0].Date, cells[0].Hour)
	}
	last := cells[len(cells)-1]
	if last.Date != LocalDateKey(week[6]) || last.Hour != "23:00" {
		t.Errorf("last cell = %s %s", last.Date, last.Hour)
	}
}
