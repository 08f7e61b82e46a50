package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canchero/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func testFacility() *models.Facility {
	return &models.Facility{
		Name:        "Cancha Norte",
		Address:     "Av. Libertador 1200",
		Sport:       models.SportFutbol,
		HourlyPrice: 180,
		Intervals: []models.Interval{
			{Start: "09:00", End: "12:00"},
			{Start: "16:00", End: "23:00"},
		},
	}
}

func TestFacilityCRUD(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	f := testFacility()
	require.NoError(t, database.CreateFacility(ctx, f))
	assert.NotZero(t, f.ID)

	got, err := database.GetFacility(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Name, got.Name)
	assert.Equal(t, models.SportFutbol, got.Sport)
	assert.Len(t, got.Intervals, 2)
	assert.Equal(t, "09:00", got.Intervals[0].Start)

	got.Name = "Cancha Norte II"
	got.HourlyPrice = 200
	require.NoError(t, database.UpdateFacility(ctx, got))

	updated, err := database.GetFacility(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cancha Norte II", updated.Name)
	assert.Equal(t, 200.0, updated.HourlyPrice)
	// Intervals untouched by attribute update
	assert.Len(t, updated.Intervals, 2)

	require.NoError(t, database.DeleteFacility(ctx, f.ID))
	_, err = database.GetFacility(ctx, f.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.ErrorIs(t, database.DeleteFacility(ctx, f.ID), sql.ErrNoRows)
}

func TestReplaceIntervals(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	f := testFacility()
	require.NoError(t, database.CreateFacility(ctx, f))

	// Whole-set replacement: the old pair disappears.
	err := database.ReplaceIntervals(ctx, f.ID, []models.Interval{{Start: "10:00", End: "22:00"}})
	require.NoError(t, err)

	got, err := database.GetFacility(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, got.Intervals, 1)
	assert.Equal(t, "10:00", got.Intervals[0].Start)
	assert.Equal(t, "22:00", got.Intervals[0].End)

	// Replacement with an empty set clears everything (fail-open facility).
	require.NoError(t, database.ReplaceIntervals(ctx, f.ID, nil))
	got, err = database.GetFacility(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Intervals)
}

func TestBookingLifecycle(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	f := testFacility()
	require.NoError(t, database.CreateFacility(ctx, f))

	date := time.Date(2026, 3, 12, 0, 0, 0, 0, time.Local)
	b := &models.Booking{
		FacilityID: f.ID,
		ClientName: "Juan Pérez",
		Date:       date,
		StartTime:  "18:00",
		EndTime:    "19:00",
		Status:     models.StatusPending,
		Amount:     180,
		Reference:  "ref-1",
	}
	require.NoError(t, database.CreateBooking(ctx, b))
	assert.NotZero(t, b.ID)

	got, err := database.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juan Pérez", got.ClientName)
	assert.Equal(t, "2026-03-12", got.Date.Format("2006-01-02"))
	assert.Equal(t, "ref-1", got.Reference)

	require.NoError(t, database.UpdateBookingStatus(ctx, b.ID, models.StatusConfirmed))
	got, err = database.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)

	assert.ErrorIs(t, database.UpdateBookingStatus(ctx, 9999, models.StatusCancelled), sql.ErrNoRows)
}

func TestHasOverlappingBooking(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	f := testFacility()
	require.NoError(t, database.CreateFacility(ctx, f))

	date := time.Date(2026, 3, 12, 0, 0, 0, 0, time.Local)
	require.NoError(t, database.CreateBooking(ctx, &models.Booking{
		FacilityID: f.ID, ClientName: "Juan", Date: date,
		StartTime: "18:00", EndTime: "19:30", Status: models.StatusConfirmed, Amount: 180,
	}))

	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"same window", "18:00", "19:30", true},
		{"contained", "18:30", "19:00", true},
		{"straddles start", "17:30", "18:30", true},
		{"straddles end", "19:00", "20:00", true},
		{"touches end boundary", "19:30", "20:30", false},
		{"touches start boundary", "17:00", "18:00", false},
		{"disjoint", "21:00", "22:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := database.HasOverlappingBooking(ctx, f.ID, date, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	// Cancelled bookings do not block the slot.
	other := time.Date(2026, 3, 13, 0, 0, 0, 0, time.Local)
	cancelled := &models.Booking{
		FacilityID: f.ID, ClientName: "María", Date: other,
		StartTime: "18:00", EndTime: "19:00", Status: models.StatusCancelled, Amount: 180,
	}
	require.NoError(t, database.CreateBooking(ctx, cancelled))
	got, err := database.HasOverlappingBooking(ctx, f.ID, other, "18:00", "19:00")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestListBookings_Filters(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	f1 := testFacility()
	require.NoError(t, database.CreateFacility(ctx, f1))
	f2 := testFacility()
	f2.Name = "Cancha Sur"
	require.NoError(t, database.CreateFacility(ctx, f2))

	mk := func(facilityID int64, day int, start, end, status string) {
		t.Helper()
		require.NoError(t, database.CreateBooking(ctx, &models.Booking{
			FacilityID: facilityID,
			ClientName: "Cliente",
			Date:       time.Date(2026, 3, day, 0, 0, 0, 0, time.Local),
			StartTime:  start,
			EndTime:    end,
			Status:     status,
			Amount:     180,
		}))
	}

	mk(f1.ID, 10, "18:00", "19:00", models.StatusConfirmed)
	mk(f1.ID, 11, "09:00", "10:00", models.StatusPending)
	mk(f1.ID, 12, "20:00", "21:00", models.StatusCancelled)
	mk(f2.ID, 11, "18:00", "19:00", models.StatusConfirmed)

	all, err := database.ListBookings(ctx, BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	byFacility, err := database.ListBookings(ctx, BookingFilter{FacilityID: f1.ID})
	require.NoError(t, err)
	assert.Len(t, byFacility, 3)

	from := time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local)
	byRange, err := database.ListBookings(ctx, BookingFilter{DateFrom: from, DateTo: to})
	require.NoError(t, err)
	assert.Len(t, byRange, 2)

	byStatus, err := database.ListBookings(ctx, BookingFilter{Status: models.StatusConfirmed})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	combined, err := database.ListBookings(ctx, BookingFilter{
		FacilityID: f1.ID, DateFrom: from, DateTo: to, Status: models.StatusPending,
	})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, "09:00", combined[0].StartTime)
}

func TestHasFutureBookings(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	f := testFacility()
	require.NoError(t, database.CreateFacility(ctx, f))

	today := time.Date(2026, 3, 12, 0, 0, 0, 0, time.Local)
	require.NoError(t, database.CreateBooking(ctx, &models.Booking{
		FacilityID: f.ID, ClientName: "Juan", Date: today.AddDate(0, 0, -2),
		StartTime: "18:00", EndTime: "19:00", Status: models.StatusConfirmed, Amount: 180,
	}))

	got, err := database.HasFutureBookings(ctx, f.ID, today)
	require.NoError(t, err)
	assert.False(t, got, "past bookings must not block deletion")

	require.NoError(t, database.CreateBooking(ctx, &models.Booking{
		FacilityID: f.ID, ClientName: "Juan", Date: today.AddDate(0, 0, 1),
		StartTime: "18:00", EndTime: "19:00", Status: models.StatusCancelled, Amount: 180,
	}))
	got, err = database.HasFutureBookings(ctx, f.ID, today)
	require.NoError(t, err)
	assert.False(t, got, "cancelled future bookings must not block deletion")

	require.NoError(t, database.CreateBooking(ctx, &models.Booking{
		FacilityID: f.ID, ClientName: "Juan", Date: today.AddDate(0, 0, 1),
		StartTime: "20:00", EndTime: "21:00", Status: models.StatusPending, Amount: 180,
	}))
	got, err = database.HasFutureBookings(ctx, f.ID, today)
	require.NoError(t, err)
	assert.True(t, got)
}
