package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/intermernet/teamtrack/internal/database"
	"github.com/intermernet/teamtrack/internal/gpx"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// exportPayload defines the structure of an export request. The keycode is
// required; the date bounds are each independently optional and inclusive.
type exportPayload struct {
	EventID   int64  `json:"event_id"`
	Keycode   string `json:"keycode"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// parseDateBounds turns the optional startDate/endDate strings into time
// bounds. Empty strings mean "unbounded on that side".
func parseDateBounds(startRaw, endRaw string) (start, end *time.Time, err error) {
	if startRaw != "" {
		t, perr := parseTimestamp(startRaw)
		if perr != nil {
			return nil, nil, fmt.Errorf("startDate: %w", perr)
		}
		start = &t
	}
	if endRaw != "" {
		t, perr := parseTimestamp(endRaw)
		if perr != nil {
			return nil, nil, fmt.Errorf("endDate: %w", perr)
		}
		end = &t
	}
	return start, end, nil
}

// collectTeamHistories fetches the location history of every team of an
// event. The per-team queries are independent, so they are issued
// concurrently; SQLite serves concurrent readers without contention. One
// query per team is a known scaling boundary, acceptable at the expected
// tens-of-teams scale.
func (s *Server) collectTeamHistories(event *database.Event, teams []*database.Team, start, end *time.Time) ([]gpx.TeamTrack, error) {
	tracks := make([]gpx.TeamTrack, len(teams))

	var g errgroup.Group
	for i, team := range teams {
		i, team := i, team
		g.Go(func() error {
			updates, err := s.db.GetTeamHistory(s.db.DB(), team.Name, event.Name, start, end)
			if err != nil {
				return err
			}
			tracks[i] = gpx.TeamTrack{TeamName: team.Name, Updates: updates}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tracks, nil
}

// handleExportEventData returns an event's complete tracking data: the event
// record and, per team, the full location history in ascending timestamp
// order, optionally clipped to an inclusive date window.
func (s *Server) handleExportEventData(w http.ResponseWriter, r *http.Request) {
	var payload exportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	start, end, err := parseDateBounds(payload.StartDate, payload.EndDate)
	if err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	event, err := s.authorizeEvent(payload.EventID, payload.Keycode)
	if err != nil {
		s.operationError(w, err)
		return
	}

	teams, err := s.db.GetTeamsByEventID(s.db.DB(), event.ID)
	if err != nil {
		s.errorJSON(w, errors.New("could not retrieve teams"), http.StatusInternalServerError)
		return
	}

	tracks, err := s.collectTeamHistories(event, teams, start, end)
	if err != nil {
		s.errorJSON(w, errors.New("could not retrieve location history"), http.StatusInternalServerError)
		return
	}

	exports := make([]TeamExport, len(teams))
	for i, team := range teams {
		exports[i] = TeamExport{
			ID:             team.ID,
			Name:           team.Name,
			Color:          team.Color,
			ExpirationDate: nullToPtr(team.ExpirationDate),
			LocationCount:  len(tracks[i].Updates),
			Locations:      toLocationUpdateResponseList(tracks[i].Updates),
		}
	}

	resp := ExportDataResponse{
		Event: toEventResponse(event),
		Teams: exports,
	}
	if payload.StartDate != "" {
		resp.StartDate = &payload.StartDate
	}
	if payload.EndDate != "" {
		resp.EndDate = &payload.EndDate
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleExportGPX serves the same authenticated export as a GPX 1.1 document,
// one track per team, so the event can be reviewed in standard mapping tools.
// Credentials and bounds arrive as query parameters since the response is a
// file download.
func (s *Server) handleExportGPX(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid event ID"), http.StatusBadRequest)
		return
	}

	start, end, err := parseDateBounds(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	event, err := s.authorizeEvent(eventID, r.URL.Query().Get("keycode"))
	if err != nil {
		s.operationError(w, err)
		return
	}

	teams, err := s.db.GetTeamsByEventID(s.db.DB(), event.ID)
	if err != nil {
		s.errorJSON(w, errors.New("could not retrieve teams"), http.StatusInternalServerError)
		return
	}

	tracks, err := s.collectTeamHistories(event, teams, start, end)
	if err != nil {
		s.errorJSON(w, errors.New("could not retrieve location history"), http.StatusInternalServerError)
		return
	}

	doc, err := gpx.BuildDocument(event.Name, tracks)
	if err != nil {
		s.errorJSON(w, errors.New("could not build GPX document"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", event.Name+".gpx"))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}
