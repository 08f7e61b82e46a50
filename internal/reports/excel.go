package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"canchero/internal/db"
	"canchero/internal/models"
)

var exportHeader = []string{"ID", "Fecha", "Inicio", "Fin", "Cliente", "Estado", "Monto", "Referencia"}

// ExportExcel writes an xlsx workbook with one sheet per facility and
// one row per booking in the date range.
func (r *Reporter) ExportExcel(ctx context.Context, filter db.BookingFilter, w io.Writer) error {
	facilities, err := r.source.ListFacilities(ctx)
	if err != nil {
		return fmt.Errorf("list facilities: %w", err)
	}
	if len(facilities) == 0 {
		return fmt.Errorf("no facilities to export")
	}

	sheet := newSheetWriter()
	defer sheet.Close()

	for i := range facilities {
		f := &facilities[i]
		filter.FacilityID = f.ID
		bookings, err := r.source.ListBookings(ctx, filter)
		if err != nil {
			return fmt.Errorf("list bookings for %d: %w", f.ID, err)
		}

		if err := sheet.AddSheet(f.Name); err != nil {
			return err
		}
		if err := sheet.WriteHeader(exportHeader); err != nil {
			return err
		}
		for j := range bookings {
			if err := sheet.WriteRow(bookingRow(&bookings[j])); err != nil {
				return err
			}
		}
	}

	if err := sheet.Save(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	r.logger.Info().Int("facilities", len(facilities)).Msg("excel export written")
	return nil
}

func bookingRow(b *models.Booking) []interface{} {
	return []interface{}{
		b.ID,
		b.Date.Format("2006-01-02"),
		b.StartTime,
		b.EndTime,
		b.ClientName,
		b.Status,
		b.Amount,
		b.Reference,
	}
}

// sheetWriter wraps excelize with a positional row cursor.
type sheetWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func newSheetWriter() *sheetWriter {
	return &sheetWriter{file: excelize.NewFile()}
}

// AddSheet starts a new sheet and resets the row cursor. The first call
// renames the workbook's default sheet.
func (w *sheetWriter) AddSheet(name string) error {
	// Excel caps sheet names at 31 chars
	if len(name) > 31 {
		name = name[:31]
	}
	if w.currentSheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	w.currentSheet = name
	w.currentRow = 1
	return nil
}

func (w *sheetWriter) WriteHeader(columns []string) error {
	if err := w.writeCells(stringsToValues(columns)); err != nil {
		return err
	}
	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}
	w.currentRow++
	return nil
}

func (w *sheetWriter) WriteRow(row []interface{}) error {
	if err := w.writeCells(row); err != nil {
		return err
	}
	w.currentRow++
	return nil
}

func (w *sheetWriter) writeCells(values []interface{}) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}

func (w *sheetWriter) Save(wr io.Writer) error { return w.file.Write(wr) }

func (w *sheetWriter) Close() error { return w.file.Close() }

func stringsToValues(columns []string) []interface{} {
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	return values
}
