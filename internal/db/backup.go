package db

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// BackupOptions controls the periodic sqlite file backup.
type BackupOptions struct {
	Enabled       bool
	IntervalHours int
	Path          string
	RetentionDays int
}

// BackupRunner copies the sqlite file to a backup directory on a timer
// and prunes old copies.
type BackupRunner struct {
	dbPath string
	opts   BackupOptions
	logger *zerolog.Logger
}

// NewBackupRunner creates a backup runner for the database at dbPath.
func NewBackupRunner(dbPath string, opts BackupOptions, logger *zerolog.Logger) *BackupRunner {
	if opts.IntervalHours <= 0 {
		opts.IntervalHours = 24
	}
	if opts.Path == "" {
		opts.Path = "backups"
	}
	return &BackupRunner{dbPath: dbPath, opts: opts, logger: logger}
}

// Start runs backups until the context is cancelled. The first backup
// runs immediately.
func (r *BackupRunner) Start(ctx context.Context) {
	if !r.opts.Enabled {
		r.logger.Info().Msg("backups disabled")
		return
	}
	r.logger.Info().
		Int("interval_hours", r.opts.IntervalHours).
		Str("path", r.opts.Path).
		Msg("backup runner started")

	ticker := time.NewTicker(time.Duration(r.opts.IntervalHours) * time.Hour)
	defer ticker.Stop()

	if err := r.Backup(); err != nil {
		r.logger.Error().Err(err).Msg("initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Backup(); err != nil {
				r.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			r.pruneOld()
		}
	}
}

// Backup copies the database file into the backup directory.
func (r *BackupRunner) Backup() error {
	if err := os.MkdirAll(r.opts.Path, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("canchero_%s.db", time.Now().Format("20060102_150405"))
	target := filepath.Join(r.opts.Path, name)

	source, err := os.Open(r.dbPath)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(target)
	if err != nil {
		return err
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return err
	}
	r.logger.Info().Str("path", target).Msg("backup written")
	return nil
}

func (r *BackupRunner) pruneOld() {
	if r.opts.RetentionDays <= 0 {
		return
	}
	files, err := os.ReadDir(r.opts.Path)
	if err != nil {
		r.logger.Error().Err(err).Msg("read backup directory")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -r.opts.RetentionDays)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			r.logger.Info().Str("file", file.Name()).Msg("deleting old backup")
			_ = os.Remove(filepath.Join(r.opts.Path, file.Name()))
		}
	}
}
