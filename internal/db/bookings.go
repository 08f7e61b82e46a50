package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"canchero/internal/models"
)

const dateLayout = "2006-01-02"

// BookingFilter narrows ListBookings results. Zero values mean "any".
type BookingFilter struct {
	FacilityID int64
	DateFrom   time.Time
	DateTo     time.Time
	Status     string
}

// CreateBooking inserts a booking.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	now := time.Now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO bookings (facility_id, client_name, date, start_time, end_time, status, amount, reference, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.FacilityID, b.ClientName, b.Date.Format(dateLayout), b.StartTime, b.EndTime,
		b.Status, b.Amount, b.Reference, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

// GetBooking returns a booking by id, sql.ErrNoRows when absent.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, facility_id, client_name, date, start_time, end_time, status, amount, reference, created_at, updated_at
		FROM bookings WHERE id = ?`,
		id,
	)
	return scanBooking(row)
}

// UpdateBookingStatus sets a booking's status.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	res, err := db.ExecContext(ctx,
		"UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListBookings returns bookings matching the filter, ordered by date and start time.
func (db *DB) ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	query := `
		SELECT id, facility_id, client_name, date, start_time, end_time, status, amount, reference, created_at, updated_at
		FROM bookings WHERE 1=1`
	var args []any

	if filter.FacilityID != 0 {
		query += " AND facility_id = ?"
		args = append(args, filter.FacilityID)
	}
	if !filter.DateFrom.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.DateFrom.Format(dateLayout))
	}
	if !filter.DateTo.IsZero() {
		query += " AND date <= ?"
		args = append(args, filter.DateTo.Format(dateLayout))
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY date, start_time, id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBookingRows(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// HasOverlappingBooking reports whether an active booking intersects
// the half-open [start, end) window on the facility/date. Times are
// zero-padded HH:MM so lexicographic comparison matches minute order.
func (db *DB) HasOverlappingBooking(ctx context.Context, facilityID int64, date time.Time, start, end string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE facility_id = ? AND date = ?
		AND start_time < ? AND end_time > ?
		AND status != ?`,
		facilityID, date.Format(dateLayout), end, start, models.StatusCancelled,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasFutureBookings reports whether a facility has non-cancelled
// bookings dated today or later. Used to guard facility deletion.
func (db *DB) HasFutureBookings(ctx context.Context, facilityID int64, today time.Time) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE facility_id = ? AND date >= ? AND status != ?`,
		facilityID, today.Format(dateLayout), models.StatusCancelled,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row *sql.Row) (*models.Booking, error) {
	return scanBookingRows(row)
}

func scanBookingRows(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var date string
	var reference sql.NullString
	if err := row.Scan(&b.ID, &b.FacilityID, &b.ClientName, &date, &b.StartTime, &b.EndTime,
		&b.Status, &b.Amount, &reference, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse booking date %q: %w", date, err)
	}
	b.Date = parsed
	if reference.Valid {
		b.Reference = reference.String
	}
	return &b, nil
}
