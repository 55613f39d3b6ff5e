package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/intermernet/teamtrack/internal/database"
	"github.com/intermernet/teamtrack/internal/keycode"

	"github.com/go-chi/chi/v5"
)

// --- Structs for JSON Payloads ---

// createEventPayload defines the structure for creating a new event. Only the
// name is required; branding images arrive as base64 strings paired with a
// MIME type and are stored verbatim.
type createEventPayload struct {
	Name             string  `json:"name"`
	OrganizationName *string `json:"organization_name,omitempty"`
	ImageData        *string `json:"image_data,omitempty"`
	ImageMimeType    *string `json:"image_mime_type,omitempty"`
	LogoData         *string `json:"logo_data,omitempty"`
	LogoMimeType     *string `json:"logo_mime_type,omitempty"`
	ExpirationDate   *string `json:"expiration_date,omitempty"`
}

type updateEventImagePayload struct {
	Keycode       string `json:"keycode"`
	ImageData     string `json:"image_data"`
	ImageMimeType string `json:"image_mime_type"`
}

type updateEventLogoPayload struct {
	Keycode      string `json:"keycode"`
	LogoData     string `json:"logo_data"`
	LogoMimeType string `json:"logo_mime_type"`
}

type updateOrganizationNamePayload struct {
	Keycode          string `json:"keycode"`
	OrganizationName string `json:"organization_name"`
}

// checkPayloadSize enforces the configured cap on base64 image/logo payloads.
func (s *Server) checkPayloadSize(data *string) error {
	if data == nil {
		return nil
	}
	if int64(len(*data)) > s.config.MaxUploadBytes {
		return fmt.Errorf("payload exceeds the %d byte limit", s.config.MaxUploadBytes)
	}
	return nil
}

// checkExpirationDate validates the calendar-date format of an optional
// expiration date.
func checkExpirationDate(date *string) error {
	if date == nil || *date == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", *date); err != nil {
		return errors.New("expiration_date must be formatted YYYY-MM-DD")
	}
	return nil
}

// --- HTTP Handlers ---

// handleGetEvent fetches a single event by id. This path returns the full
// record; it is addressed by opaque integer id, not by guessable name.
func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid event ID"), http.StatusBadRequest)
		return
	}

	event, err := s.db.GetEventByID(s.db.DB(), eventID)
	if err != nil {
		s.operationError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"event": toEventResponse(event)})
}

// handleGetEventByName is the public lookup used by the map page to fetch an
// event's branding before anyone logs in. The keycode is always blanked here;
// creating the event is the only unauthenticated way to ever see it.
func (s *Server) handleGetEventByName(w http.ResponseWriter, r *http.Request) {
	eventName := chi.URLParam(r, "eventName")
	if eventName == "" {
		s.errorJSON(w, errors.New("event name is required"), http.StatusBadRequest)
		return
	}

	event, err := s.db.GetEventByName(s.db.DB(), eventName)
	if err != nil {
		s.operationError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"event": toPublicEventResponse(event)})
}

// handleCreateEvent creates a new event with a freshly generated keycode.
// The response includes the keycode: the caller just created the event and
// this is the one time it is handed out without authentication.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var payload createEventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	if payload.Name == "" {
		s.errorJSON(w, errors.New("name is required"), http.StatusBadRequest)
		return
	}
	if err := s.checkPayloadSize(payload.ImageData); err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}
	if err := s.checkPayloadSize(payload.LogoData); err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}
	if err := checkExpirationDate(payload.ExpirationDate); err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	code, err := keycode.Generate()
	if err != nil {
		s.errorJSON(w, errors.New("could not generate keycode"), http.StatusInternalServerError)
		return
	}

	var newEvent *database.Event
	err = s.db.Write(func(tx *sql.Tx) error {
		var txErr error
		newEvent, txErr = s.db.CreateEvent(tx, database.CreateEventParams{
			Name:             payload.Name,
			Keycode:          code,
			OrganizationName: payload.OrganizationName,
			ImageData:        payload.ImageData,
			ImageMimeType:    payload.ImageMimeType,
			LogoData:         payload.LogoData,
			LogoMimeType:     payload.LogoMimeType,
			ExpirationDate:   payload.ExpirationDate,
		})
		return txErr
	})
	if err != nil {
		s.operationError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"event": toEventResponse(newEvent)})
}

// handleUpdateEventImage replaces an event's image. Requires the keycode.
func (s *Server) handleUpdateEventImage(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid event ID"), http.StatusBadRequest)
		return
	}

	var payload updateEventImagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.ImageData == "" || payload.ImageMimeType == "" {
		s.errorJSON(w, errors.New("image_data and image_mime_type are required"), http.StatusBadRequest)
		return
	}
	if err := s.checkPayloadSize(&payload.ImageData); err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	if _, err := s.authorizeEvent(eventID, payload.Keycode); err != nil {
		s.operationError(w, err)
		return
	}

	err = s.db.Write(func(tx *sql.Tx) error {
		return s.db.UpdateEventImage(tx, eventID, payload.ImageData, payload.ImageMimeType)
	})
	if err != nil {
		s.operationError(w, err)
		return
	}

	event, err := s.db.GetEventByID(s.db.DB(), eventID)
	if err != nil {
		s.operationError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"event": toEventResponse(event)})
}

// handleUpdateEventLogo replaces an event's logo. Requires the keycode.
func (s *Server) handleUpdateEventLogo(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid event ID"), http.StatusBadRequest)
		return
	}

	var payload updateEventLogoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.LogoData == "" || payload.LogoMimeType == "" {
		s.errorJSON(w, errors.New("logo_data and logo_mime_type are required"), http.StatusBadRequest)
		return
	}
	if err := s.checkPayloadSize(&payload.LogoData); err != nil {
		s.errorJSON(w, err, http.StatusBadRequest)
		return
	}

	if _, err := s.authorizeEvent(eventID, payload.Keycode); err != nil {
		s.operationError(w, err)
		return
	}

	err = s.db.Write(func(tx *sql.Tx) error {
		return s.db.UpdateEventLogo(tx, eventID, payload.LogoData, payload.LogoMimeType)
	})
	if err != nil {
		s.operationError(w, err)
		return
	}

	event, err := s.db.GetEventByID(s.db.DB(), eventID)
	if err != nil {
		s.operationError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"event": toEventResponse(event)})
}

// handleUpdateOrganizationName changes the organization name shown on the
// event page. Requires the keycode.
func (s *Server) handleUpdateOrganizationName(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		s.errorJSON(w, errors.New("invalid event ID"), http.StatusBadRequest)
		return
	}

	var payload updateOrganizationNamePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}
	if payload.OrganizationName == "" {
		s.errorJSON(w, errors.New("organization_name is required"), http.StatusBadRequest)
		return
	}

	if _, err := s.authorizeEvent(eventID, payload.Keycode); err != nil {
		s.operationError(w, err)
		return
	}

	err = s.db.Write(func(tx *sql.Tx) error {
		return s.db.UpdateEventOrganizationName(tx, eventID, payload.OrganizationName)
	})
	if err != nil {
		s.operationError(w, err)
		return
	}

	event, err := s.db.GetEventByID(s.db.DB(), eventID)
	if err != nil {
		s.operationError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"event": toEventResponse(event)})
}
