package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"canchero/internal/models"
)

const facilitiesCacheKey = "facilities"

// handleFacilities serves /api/facilities.
func (s *HTTPServer) handleFacilities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listFacilities(w, r)
	case http.MethodPost:
		s.createFacility(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listFacilities(w http.ResponseWriter, r *http.Request) {
	var facilities []models.Facility
	if s.cache.Read(r.Context(), facilitiesCacheKey, &facilities) {
		writeJSON(w, http.StatusOK, map[string]any{"canchas": facilities})
		return
	}

	facilities, err := s.facilities.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list facilities")
		writeServiceError(w, err)
		return
	}
	s.cache.Write(r.Context(), facilitiesCacheKey, facilities)
	writeJSON(w, http.StatusOK, map[string]any{"canchas": facilities})
}

func (s *HTTPServer) createFacility(w http.ResponseWriter, r *http.Request) {
	var f models.Facility
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.facilities.Create(r.Context(), &f); err != nil {
		writeServiceError(w, err)
		return
	}
	s.cache.Invalidate(r.Context(), facilitiesCacheKey)
	writeJSON(w, http.StatusCreated, &f)
}

// handleFacilityByID serves /api/facilities/{id} and its interval
// subresources.
func (s *HTTPServer) handleFacilityByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/facilities/"), "/")
	id, err := parseID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid facility id")
		return
	}

	switch {
	case len(parts) == 1:
		s.facilityByID(w, r, id)
	case len(parts) == 2 && parts[1] == "intervals":
		s.replaceIntervals(w, r, id)
	case len(parts) == 3 && parts[1] == "intervals" && parts[2] == "copy":
		s.copyIntervals(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) facilityByID(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		f, err := s.facilities.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	case http.MethodPut:
		var f models.Facility
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&f); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		f.ID = id
		if err := s.facilities.Update(r.Context(), &f); err != nil {
			writeServiceError(w, err)
			return
		}
		s.cache.Invalidate(r.Context(), facilitiesCacheKey)
		writeJSON(w, http.StatusOK, &f)
	case http.MethodDelete:
		if err := s.facilities.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		s.cache.Invalidate(r.Context(), facilitiesCacheKey)
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// replaceIntervals swaps a facility's opening intervals as a whole set.
// PUT /api/facilities/{id}/intervals
func (s *HTTPServer) replaceIntervals(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use PUT")
		return
	}

	var req struct {
		Intervals []models.Interval `json:"horarios"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.facilities.SetIntervals(r.Context(), id, req.Intervals); err != nil {
		writeServiceError(w, err)
		return
	}
	s.cache.Invalidate(r.Context(), facilitiesCacheKey)
	writeJSON(w, http.StatusOK, map[string]any{"cancha_id": id, "horarios": req.Intervals})
}

// copyIntervals copies another facility's opening intervals.
// POST /api/facilities/{id}/intervals/copy
func (s *HTTPServer) copyIntervals(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req struct {
		FromID int64 `json:"desde_cancha_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FromID <= 0 {
		writeError(w, http.StatusBadRequest, "desde_cancha_id is required")
		return
	}

	if err := s.facilities.CopyIntervals(r.Context(), req.FromID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	s.cache.Invalidate(r.Context(), facilitiesCacheKey)
	writeJSON(w, http.StatusOK, map[string]any{"cancha_id": id, "copiado_de": req.FromID})
}
