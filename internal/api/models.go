package api

import (
	"database/sql"
	"time"

	"github.com/intermernet/teamtrack/internal/database"
)

// EventResponse is the DTO for an event. Optional columns are represented as
// a string or `null` in the JSON response. The keycode field is filled in by
// toEventResponse and blanked by toPublicEventResponse; the public-by-name
// lookup must never reveal it.
type EventResponse struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Keycode          string  `json:"keycode"`
	ImageData        *string `json:"image_data"`
	ImageMimeType    *string `json:"image_mime_type"`
	LogoData         *string `json:"logo_data"`
	LogoMimeType     *string `json:"logo_mime_type"`
	OrganizationName *string `json:"organization_name"`
	ExpirationDate   *string `json:"expiration_date"`
}

// toEventResponse converts the database model into the DTO used on
// authenticated paths, keycode included.
func toEventResponse(event *database.Event) EventResponse {
	return EventResponse{
		ID:               event.ID,
		Name:             event.Name,
		Keycode:          event.Keycode,
		ImageData:        nullToPtr(event.ImageData),
		ImageMimeType:    nullToPtr(event.ImageMimeType),
		LogoData:         nullToPtr(event.LogoData),
		LogoMimeType:     nullToPtr(event.LogoMimeType),
		OrganizationName: nullToPtr(event.OrganizationName),
		ExpirationDate:   nullToPtr(event.ExpirationDate),
	}
}

// toPublicEventResponse is the unauthenticated variant: same shape, keycode
// always empty. Used by the by-name lookup that serves branding images.
func toPublicEventResponse(event *database.Event) EventResponse {
	resp := toEventResponse(event)
	resp.Keycode = ""
	return resp
}

// TeamResponse is the DTO for a team.
type TeamResponse struct {
	ID             int64   `json:"id"`
	EventID        int64   `json:"event_id"`
	Name           string  `json:"name"`
	Color          string  `json:"color"`
	ExpirationDate *string `json:"expiration_date"`
}

func toTeamResponse(team *database.Team) TeamResponse {
	return TeamResponse{
		ID:             team.ID,
		EventID:        team.EventID,
		Name:           team.Name,
		Color:          team.Color,
		ExpirationDate: nullToPtr(team.ExpirationDate),
	}
}

func toTeamResponseList(teams []*database.Team) []TeamResponse {
	responseList := make([]TeamResponse, len(teams))
	for i, team := range teams {
		responseList[i] = toTeamResponse(team)
	}
	return responseList
}

// LocationUpdateResponse is the DTO for a single GPS reading. Coordinates are
// plain floating-point numbers and the timestamp is an RFC 3339 string.
type LocationUpdateResponse struct {
	ID        int64   `json:"id"`
	Team      string  `json:"team"`
	Event     string  `json:"event"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Timestamp string  `json:"timestamp"`
}

func toLocationUpdateResponse(u *database.LocationUpdate) LocationUpdateResponse {
	return LocationUpdateResponse{
		ID:        u.ID,
		Team:      u.Team,
		Event:     u.Event,
		Lat:       u.Lat,
		Lon:       u.Lon,
		Timestamp: u.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func toLocationUpdateResponseList(updates []*database.LocationUpdate) []LocationUpdateResponse {
	responseList := make([]LocationUpdateResponse, len(updates))
	for i, u := range updates {
		responseList[i] = toLocationUpdateResponse(u)
	}
	return responseList
}

// LoginResponse is returned by a successful event login: the full event
// record plus its teams ordered by name.
type LoginResponse struct {
	Success bool           `json:"success"`
	Event   EventResponse  `json:"event"`
	Teams   []TeamResponse `json:"teams"`
}

// TeamExport is one team's slice of an event export: the team's metadata and
// its location history in ascending timestamp order.
type TeamExport struct {
	ID             int64                    `json:"id"`
	Name           string                   `json:"name"`
	Color          string                   `json:"color"`
	ExpirationDate *string                  `json:"expiration_date"`
	LocationCount  int                      `json:"locationCount"`
	Locations      []LocationUpdateResponse `json:"locations"`
}

// ExportDataResponse is the full payload of exportEventData.
type ExportDataResponse struct {
	Event     EventResponse `json:"event"`
	Teams     []TeamExport  `json:"teams"`
	StartDate *string       `json:"startDate"`
	EndDate   *string       `json:"endDate"`
}

// CleanupResponse reports what an expiration sweep removed.
type CleanupResponse struct {
	DeletedTeams  int64  `json:"deletedTeams"`
	DeletedEvents int64  `json:"deletedEvents"`
	Message       string `json:"message"`
}

// nullToPtr converts a nullable column value into a *string so that absent
// values serialize as JSON null.
func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
