package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/intermernet/teamtrack/internal/database"
)

// authorizeEvent is the authorization check run by every privileged handler.
// It looks up the event by (id, keycode) and returns the matching row. A
// missing event and a wrong keycode both surface as ErrUnauthorized, so a
// caller probing the API cannot learn which event ids exist.
//
// The keycode itself is the capability token. It is supplied on each request
// and nothing is cached between calls.
func (s *Server) authorizeEvent(eventID int64, keycode string) (*database.Event, error) {
	if keycode == "" {
		return nil, database.ErrUnauthorized
	}
	return s.db.GetEventByIDAndKeycode(s.db.DB(), eventID, keycode)
}

// authorizeTeam extends authorizeEvent for team-scoped mutations: after the
// event keycode checks out, the target team must actually belong to that
// event. A team under a different event is reported as not found, even when
// the keycode was correct for the supplied event.
func (s *Server) authorizeTeam(teamID, eventID int64, keycode string) (*database.Team, error) {
	if _, err := s.authorizeEvent(eventID, keycode); err != nil {
		return nil, err
	}

	team, err := s.db.GetTeamByID(s.db.DB(), teamID)
	if err != nil {
		return nil, err
	}
	if team.EventID != eventID {
		return nil, database.ErrNotFound
	}
	return team, nil
}

// loginPayload defines the structure for logging in to an event.
type loginPayload struct {
	EventName string `json:"event_name"`
	Keycode   string `json:"keycode"`
}

// handleLogin authenticates an organizer against an event. On success it
// returns the full event record (keycode included, the caller just proved
// they hold it) together with the event's teams ordered by name.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	if payload.EventName == "" || payload.Keycode == "" {
		s.errorJSON(w, errors.New("event_name and keycode are required"), http.StatusBadRequest)
		return
	}

	event, err := s.db.GetEventByNameAndKeycode(s.db.DB(), payload.EventName, payload.Keycode)
	if err != nil {
		// Wrong name, wrong keycode, or both: always the same answer.
		s.operationError(w, err)
		return
	}

	teams, err := s.db.GetTeamsByEventID(s.db.DB(), event.ID)
	if err != nil {
		s.errorJSON(w, errors.New("could not retrieve teams"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Event:   toEventResponse(event),
		Teams:   toTeamResponseList(teams),
	})
}
