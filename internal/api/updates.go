package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/intermernet/teamtrack/internal/database"
)

// defaultUpdatesLimit caps an `updates` query when no limit is supplied.
const defaultUpdatesLimit = 100

// createLocationUpdatePayload defines the structure of a beacon submission.
// The team and event are referenced by name, which is all a tracker beacon
// knows about itself. The timestamp is optional and defaults to now.
type createLocationUpdatePayload struct {
	Team      string   `json:"team"`
	Event     string   `json:"event"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// handleGetUpdates returns the most recent location updates for a team,
// newest first.
func (s *Server) handleGetUpdates(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")
	if team == "" {
		s.errorJSON(w, errors.New("team query parameter is required"), http.StatusBadRequest)
		return
	}

	limit := defaultUpdatesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.errorJSON(w, errors.New("limit must be a positive integer"), http.StatusBadRequest)
			return
		}
		limit = n
	}

	updates, err := s.db.GetUpdatesByTeam(s.db.DB(), team, limit)
	if err != nil {
		s.errorJSON(w, errors.New("could not retrieve updates"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"updates": toLocationUpdateResponseList(updates)})
}

// handleCreateLocationUpdate stores a GPS reading submitted by a tracker
// beacon. Submissions are unauthenticated by design: a beacon in the field
// holds nothing but its team and event names. A reading for an unknown
// team/event pair is rejected by the persistence layer's reference check.
func (s *Server) handleCreateLocationUpdate(w http.ResponseWriter, r *http.Request) {
	var payload createLocationUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	if payload.Team == "" || payload.Event == "" {
		s.errorJSON(w, errors.New("team and event are required"), http.StatusBadRequest)
		return
	}
	if payload.Lat == nil || payload.Lon == nil {
		s.errorJSON(w, errors.New("lat and lon are required"), http.StatusBadRequest)
		return
	}

	timestamp := time.Now().UTC()
	if payload.Timestamp != "" {
		parsed, err := parseTimestamp(payload.Timestamp)
		if err != nil {
			s.errorJSON(w, err, http.StatusBadRequest)
			return
		}
		timestamp = parsed
	}

	var update *database.LocationUpdate
	err := s.db.Write(func(tx *sql.Tx) error {
		var txErr error
		update, txErr = s.db.CreateLocationUpdate(tx, payload.Team, payload.Event, *payload.Lat, *payload.Lon, timestamp)
		return txErr
	})
	if err != nil {
		s.operationError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"update": toLocationUpdateResponse(update)})
}

// parseTimestamp accepts an RFC 3339 timestamp or a bare calendar date
// (interpreted as midnight UTC).
func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("timestamps must be RFC 3339 or YYYY-MM-DD")
}
