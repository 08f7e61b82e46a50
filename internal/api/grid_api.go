package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"canchero/internal/db"
	"canchero/internal/grid"
)

// GridResponse is the occupancy grid for one facility.
type GridResponse struct {
	FacilityID   int64       `json:"cancha_id"`
	FacilityName string      `json:"cancha"`
	View         string      `json:"vista"`
	Days         []string    `json:"dias"`
	Hours        []string    `json:"horas"`
	Cells        []grid.Cell `json:"celdas"`
}

// handleGrid computes the slot occupancy grid.
// GET /api/grid?facility_id=N&date=YYYY-MM-DD&view=day|week&offset=n
func (s *HTTPServer) handleGrid(w http.ResponseWriter, r *http.Request) {
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

	anchor := time.Now()
	if raw := q.Get("date"); raw != "" {
		anchor, err = time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
	}

	view := q.Get("view")
	if view == "" {
		view = "week"
	}
	if view != "day" && view != "week" {
		writeError(w, http.StatusBadRequest, "invalid view; expected day or week")
		return
	}

	offset := 0
	if raw := q.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
	}

	cacheKey := fmt.Sprintf("grid:%d:%s:%s:%d", facilityID, view, grid.LocalDateKey(anchor), offset)
	var resp GridResponse
	if s.cache.Read(r.Context(), cacheKey, &resp) {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	facility, err := s.facilities.Get(r.Context(), facilityID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var days []time.Time
	if view == "day" {
		days = []time.Time{anchor.AddDate(0, 0, offset)}
	} else {
		week := grid.WeekOf(anchor, offset)
		days = week[:]
	}

	bookings, err := s.bookings.List(r.Context(), db.BookingFilter{
		FacilityID: facilityID,
		DateFrom:   days[0],
		DateTo:     days[len(days)-1],
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("list bookings for grid")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	hours := grid.Hours(s.opts.OpenHour, s.opts.CloseHour)
	resp = GridResponse{
		FacilityID:   facility.ID,
		FacilityName: facility.Name,
		View:         view,
		Days:         make([]string, len(days)),
		Hours:        hours,
		Cells:        grid.BuildGrid(facility, bookings, days, hours),
	}
	for i, d := range days {
		resp.Days[i] = grid.LocalDateKey(d)
	}

	s.cache.Write(r.Context(), cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}
