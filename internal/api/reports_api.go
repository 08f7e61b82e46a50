package api

import (
	"fmt"
	"net/http"
	"time"

	"canchero/internal/reports"
)

// handleReportUsage serves a usage series for one facility.
// GET /api/reports/usage?facility_id=N&period=dia|semana|mes&date=YYYY-MM-DD
func (s *HTTPServer) handleReportUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	q := r.URL.Query()
	facilityID, err := parseID(q.Get("facility_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "facility_id is required")
		return
	}

	period := reports.Period(q.Get("period"))
	if period == "" {
		period = reports.PeriodWeek
	}
	if !reports.ValidPeriod(period) {
		writeError(w, http.StatusBadRequest, "invalid period; expected dia, semana or mes")
		return
	}

	anchor := time.Now()
	if raw := q.Get("date"); raw != "" {
		anchor, err = time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
	}

	report, err := s.reporter.Usage(r.Context(), facilityID, period, anchor)
	if err != nil {
		s.logger.Error().Err(err).Int64("facility_id", facilityID).Msg("usage report")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleReportSummary serves the dashboard headline numbers.
// GET /api/reports/summary
func (s *HTTPServer) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	summary, err := s.reporter.Summary(r.Context(), time.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("summary report")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleReportExport streams an xlsx workbook of bookings.
// GET /api/reports/export?date_from=YYYY-MM-DD&date_to=YYYY-MM-DD
func (s *HTTPServer) handleReportExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	filter, err := bookingFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Each sheet sets its own facility filter.
	filter.FacilityID = 0

	filename := fmt.Sprintf("reservas-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := s.reporter.ExportExcel(r.Context(), filter, w); err != nil {
		s.logger.Error().Err(err).Msg("excel export")
		// Headers already sent; nothing more we can do.
	}
}
