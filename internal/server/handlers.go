package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/mapty/internal/app"
	"github.com/meltforce/mapty/internal/models"
	"github.com/meltforce/mapty/internal/repository"
	"github.com/meltforce/mapty/internal/view"
)

// stateResponse is the controller snapshot plus what the view surfaces show.
type stateResponse struct {
	app.Snapshot
	Form     *view.FormState `json:"form,omitempty"`
	Viewport *view.Viewport  `json:"viewport,omitempty"`
	Markers  []view.Marker   `json:"markers,omitempty"`
	List     []app.ListEntry `json:"list,omitempty"`
}

type clickRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// logRequest is a click location and the form values in one body.
type logRequest struct {
	clickRequest
	app.FormValues
}

type kindRequest struct {
	Kind string `json:"kind"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ctl.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := stateResponse{Snapshot: snap}
	if s.views.Form != nil {
		fs := s.views.Form.State()
		resp.Form = &fs
	}
	if m := s.views.Map; m != nil && m.Initialized() {
		vp := m.Viewport()
		resp.Viewport = &vp
		resp.Markers = m.Markers()
	}
	if s.views.List != nil {
		resp.List = s.views.List.Entries()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMapClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	at, ok := req.coordinates(w)
	if !ok {
		return
	}
	if err := s.ctl.ClickMap(r.Context(), at); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"pending_intent": at})
}

func (s *Server) handleKind(w http.ResponseWriter, r *http.Request) {
	var req kindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.ctl.ChangeKind(r.Context(), req.Kind); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"kind": req.Kind})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var values app.FormValues
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	workout, err := s.ctl.Submit(r.Context(), values)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleLogWorkout(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	at, ok := req.coordinates(w)
	if !ok {
		return
	}
	workout, err := s.ctl.LogWorkout(r.Context(), at, req.FormValues)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ctl.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	workouts := snap.Workouts
	if raw := r.URL.Query().Get("type"); raw != "" {
		kind, err := models.ParseKind(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		workouts = filterKind(workouts, kind)
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.ctl.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, wk := range snap.Workouts {
		if wk.ID == id {
			writeJSON(w, http.StatusOK, wk)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
}

func (s *Server) handleSelectWorkout(w http.ResponseWriter, r *http.Request) {
	workout, err := s.ctl.Select(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.ctl.Reset(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	notices := []app.Notice{}
	if s.views.Notices != nil {
		notices = append(notices, s.views.Notices.All()...)
	}
	writeJSON(w, http.StatusOK, notices)
}

// writeError maps controller errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrUnknownKind):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrCreationDisabled), errors.Is(err, app.ErrNoPendingIntent):
		status = http.StatusConflict
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrStopped):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func filterKind(in []models.Workout, kind models.Kind) []models.Workout {
	out := make([]models.Workout, 0, len(in))
	for _, w := range in {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// coordinates writes a 400 and reports false when lat or lng is missing or
// out of range.
func (req clickRequest) coordinates(w http.ResponseWriter) (models.Coordinates, bool) {
	if req.Lat == nil || req.Lng == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lng are required"})
		return models.Coordinates{}, false
	}
	at := models.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	if !at.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coordinates out of range"})
		return models.Coordinates{}, false
	}
	return at, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
