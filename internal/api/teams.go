package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/intermernet/teamtrack/internal/database"

	"github.com/go-chi/chi/v5"
)

// defaultTeamColor is the track color a team gets when none is chosen.
const defaultTeamColor = "#3B82F6"

// createTeamPayload defines the structure for adding a team to an event.
type createTeamPayload struct {
	EventID        int64   `json:"event_id"`
	Name           string  `json:"name"`
	Color          string  `json:"color,omitempty"`
	ExpirationDate *string `json:"expiration_date,omitempty"`
}

// updateTeamColorPayload defines the structure for changing a team's color.
// The mutation is scoped to the team's event, so the event id and its keycode
// ride along.
type updateTeamColorPayload struct {
	EventID int64  `json:"event_id"`
	Keycode string `json:"keycode"`
	Color   string `json:"color"`
}

// handleCreateTeam registers a team under an event. This path carries no
// keycode on purpose: whoever knows the event exists can add a team, which
// keeps field setup friction-free.
func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var payload createTeamPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	if payload.EventID == 0 || payload.Name == "" {
		s.errorJSON(w, errors.New("event_id and name are required"), http.StatusBadRequest)
		return
	}
	if payload.Color == "" {
		payload.Color = defaultTeamColor
	}
	if err := checkExpirationDate(payload.ExpirationDate); err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	var newTeam *database.Team
	err := s.db.Write(func(tx *sql.Tx) error {
		var txErr error
		newTeam, txErr = s.db.CreateTeam(tx, payload.EventID, payload.Name, payload.Color, payload.ExpirationDate)
		return txErr
	})
	if err != nil {
		s.operationError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"team": toTeamResponse(newTeam)})
}

// handleUpdateTeamColor changes a team's display color. The caller must hold
// the keycode of the event the team belongs to; a correct keycode for some
// OTHER event does not unlock the team.
func (s *Server) handleUpdateTeamColor(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.ParseInt(chi.URLParam(r, "teamID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid team ID"), http.StatusBadRequest)
		return
	}

	var payload updateTeamColorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.Color == "" {
		s.errorJSON(w, errors.New("color is required"), http.StatusBadRequest)
		return
	}

	if _, err := s.authorizeTeam(teamID, payload.EventID, payload.Keycode); err != nil {
		s.operationError(w, err)
		return
	}

	err = s.db.Write(func(tx *sql.Tx) error {
		return s.db.UpdateTeamColor(tx, teamID, payload.Color)
	})
	if err != nil {
		s.operationError(w, err)
		return
	}

	team, err := s.db.GetTeamByID(s.db.DB(), teamID)
	if err != nil {
		s.operationError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"team": toTeamResponse(team)})
}
