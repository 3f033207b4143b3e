package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/developforgood/pantheon/internal/storage"
)

func (s *Server) ListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := s.Store.FetchCycles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cycles)
}

func (s *Server) GetCycle(w http.ResponseWriter, r *http.Request) {
	id, ok := cycleID(w, r)
	if !ok {
		return
	}
	cycle, err := s.Store.FetchCycle(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cycle not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cycle)
}

// DeleteCycle removes a cycle and everything it owns. Volunteers with live
// workspace accounts must be undone first.
func (s *Server) DeleteCycle(w http.ResponseWriter, r *http.Request) {
	id, ok := cycleID(w, r)
	if !ok {
		return
	}

	ledger, err := s.Store.FetchExportedVolunteers(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(ledger) > 0 {
		writeError(w, http.StatusConflict, "cycle has exported volunteers: undo the export first")
		return
	}

	if err := s.Store.DeleteCycle(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cycle not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListCycleVolunteers(w http.ResponseWriter, r *http.Request) {
	id, ok := cycleID(w, r)
	if !ok {
		return
	}
	if _, err := s.Store.FetchCycle(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cycle not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	volunteers, err := s.Store.FetchVolunteersByCycle(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, volunteers)
}

func (s *Server) GetCycleStats(w http.ResponseWriter, r *http.Request) {
	id, ok := cycleID(w, r)
	if !ok {
		return
	}
	stats, err := s.Store.CycleStats(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cycle not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func cycleID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cycle id")
		return uuid.Nil, false
	}
	return id, true
}
