package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"canchero/internal/models"
)

// CreateFacility inserts a facility and its intervals.
func (db *DB) CreateFacility(ctx context.Context, f *models.Facility) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO facilities (name, address, sport, hourly_price, latitude, longitude, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Name, f.Address, string(f.Sport), f.HourlyPrice, f.Latitude, f.Longitude, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert facility: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	if err := insertIntervals(ctx, tx, id, f.Intervals); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	f.ID = id
	f.CreatedAt = now
	f.UpdatedAt = now
	return nil
}

// GetFacility returns a facility with its intervals, sql.ErrNoRows when absent.
func (db *DB) GetFacility(ctx context.Context, id int64) (*models.Facility, error) {
	var f models.Facility
	var sport string
	err := db.QueryRowContext(ctx, `
		SELECT id, name, address, sport, hourly_price, latitude, longitude, created_at, updated_at
		FROM facilities WHERE id = ?`,
		id,
	).Scan(&f.ID, &f.Name, &f.Address, &sport, &f.HourlyPrice, &f.Latitude, &f.Longitude, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.Sport = models.Sport(sport)

	intervals, err := db.listIntervals(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	f.Intervals = intervals
	return &f, nil
}

// ListFacilities returns all facilities with intervals attached.
func (db *DB) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, address, sport, hourly_price, latitude, longitude, created_at, updated_at
		FROM facilities ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facilities []models.Facility
	for rows.Next() {
		var f models.Facility
		var sport string
		if err := rows.Scan(&f.ID, &f.Name, &f.Address, &sport, &f.HourlyPrice,
			&f.Latitude, &f.Longitude, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		f.Sport = models.Sport(sport)
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byFacility, err := db.listAllIntervals(ctx)
	if err != nil {
		return nil, err
	}
	for i := range facilities {
		facilities[i].Intervals = byFacility[facilities[i].ID]
	}
	return facilities, nil
}

// UpdateFacility updates facility attributes; intervals are untouched
// (use ReplaceIntervals for those).
func (db *DB) UpdateFacility(ctx context.Context, f *models.Facility) error {
	res, err := db.ExecContext(ctx, `
		UPDATE facilities
		SET name = ?, address = ?, sport = ?, hourly_price = ?, latitude = ?, longitude = ?, updated_at = ?
		WHERE id = ?`,
		f.Name, f.Address, string(f.Sport), f.HourlyPrice, f.Latitude, f.Longitude, time.Now(), f.ID,
	)
	if err != nil {
		return fmt.Errorf("update facility: %w", err)
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

// DeleteFacility removes a facility; cascades to its intervals.
func (db *DB) DeleteFacility(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, "DELETE FROM facilities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete facility: %w", err)
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

// ReplaceIntervals swaps the whole interval set of a facility in one
// transaction. Partial interval updates are not supported.
func (db *DB) ReplaceIntervals(ctx context.Context, facilityID int64, intervals []models.Interval) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM facility_intervals WHERE facility_id = ?", facilityID); err != nil {
		return fmt.Errorf("clear intervals: %w", err)
	}
	if err := insertIntervals(ctx, tx, facilityID, intervals); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE facilities SET updated_at = ? WHERE id = ?", time.Now(), facilityID); err != nil {
		return fmt.Errorf("touch facility: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertIntervals(ctx context.Context, tx *sql.Tx, facilityID int64, intervals []models.Interval) error {
	for _, iv := range intervals {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO facility_intervals (facility_id, start_time, end_time)
			VALUES (?, ?, ?)`,
			facilityID, iv.Start, iv.End,
		); err != nil {
			return fmt.Errorf("insert interval %s-%s: %w", iv.Start, iv.End, err)
		}
	}
	return nil
}

func (db *DB) listIntervals(ctx context.Context, facilityID int64) ([]models.Interval, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT start_time, end_time FROM facility_intervals
		WHERE facility_id = ? ORDER BY start_time`,
		facilityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intervals []models.Interval
	for rows.Next() {
		var iv models.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

func (db *DB) listAllIntervals(ctx context.Context) (map[int64][]models.Interval, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT facility_id, start_time, end_time FROM facility_intervals
		ORDER BY facility_id, start_time`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byFacility := make(map[int64][]models.Interval)
	for rows.Next() {
		var facilityID int64
		var iv models.Interval
		if err := rows.Scan(&facilityID, &iv.Start, &iv.End); err != nil {
			return nil, err
		}
		byFacility[facilityID] = append(byFacility[facilityID], iv)
	}
	return byFacility, rows.Err()
}
