package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEventReturnsGeneratedKeycode(t *testing.T) {
	handler, _ := newTestServer(t)

	event := createEventViaAPI(t, handler, "Hike2024")
	assert.NotZero(t, event.ID)
	assert.Equal(t, "Hike2024", event.Name)
	// Creation is the one unauthenticated path that hands out the keycode.
	assert.Len(t, event.Keycode, 8)
	for _, c := range event.Keycode {
		assert.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", string(c))
	}
}

func TestCreateEventRejectsDuplicateName(t *testing.T) {
	handler, _ := newTestServer(t)

	createEventViaAPI(t, handler, "Hike2024")
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/events", map[string]interface{}{"name": "Hike2024"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateEventRejectsOversizedImage(t *testing.T) {
	handler, _ := newTestServer(t)

	big := strings.Repeat("A", (1<<20)+1)
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/events", map[string]interface{}{
		"name":            "Hike2024",
		"image_data":      big,
		"image_mime_type": "image/png",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEventByNameNeverLeaksKeycode(t *testing.T) {
	handler, _ := newTestServer(t)

	created := createEventViaAPI(t, handler, "Hike2024")
	require.NotEmpty(t, created.Keycode)

	// Even immediately after creation the public lookup must come back with
	// an empty keycode.
	var resp struct {
		Event EventResponse `json:"event"`
	}
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/events/by-name/Hike2024", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, resp.Event.ID)
	assert.Empty(t, resp.Event.Keycode)
}

func TestGetEventByID(t *testing.T) {
	handler, _ := newTestServer(t)

	created := createEventViaAPI(t, handler, "Hike2024")

	var resp struct {
		Event EventResponse `json:"event"`
	}
	rec := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/events/%d", created.ID), nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hike2024", resp.Event.Name)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/events/9999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateEventMetadataRequiresKeycode(t *testing.T) {
	handler, _ := newTestServer(t)

	event := createEventViaAPI(t, handler, "Hike2024")
	orgURL := fmt.Sprintf("/api/v1/events/%d/organization", event.ID)

	// Wrong keycode: rejected, and the caller cannot tell whether the event
	// even exists.
	rec := doJSON(t, handler, http.MethodPatch, orgURL, map[string]interface{}{
		"keycode":           "WRONG000",
		"organization_name": "Trail Club",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/events/9999/organization", map[string]interface{}{
		"keycode":           event.Keycode,
		"organization_name": "Trail Club",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct keycode: the named field is updated and the event returned.
	var resp struct {
		Event EventResponse `json:"event"`
	}
	rec = doJSON(t, handler, http.MethodPatch, orgURL, map[string]interface{}{
		"keycode":           event.Keycode,
		"organization_name": "Trail Club",
	}, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Event.OrganizationName)
	assert.Equal(t, "Trail Club", *resp.Event.OrganizationName)
}

func TestUpdateEventImageAndLogo(t *testing.T) {
	handler, _ := newTestServer(t)

	event := createEventViaAPI(t, handler, "Hike2024")

	var resp struct {
		Event EventResponse `json:"event"`
	}
	rec := doJSON(t, handler, http.MethodPatch, fmt.Sprintf("/api/v1/events/%d/image", event.ID), map[string]interface{}{
		"keycode":         event.Keycode,
		"image_data":      "aW1hZ2U=",
		"image_mime_type": "image/png",
	}, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Event.ImageData)
	assert.Equal(t, "aW1hZ2U=", *resp.Event.ImageData)
	// The logo is untouched by an image update.
	assert.Nil(t, resp.Event.LogoData)

	rec = doJSON(t, handler, http.MethodPatch, fmt.Sprintf("/api/v1/events/%d/logo", event.ID), map[string]interface{}{
		"keycode":        event.Keycode,
		"logo_data":      "bG9nbw==",
		"logo_mime_type": "image/svg+xml",
	}, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Event.LogoData)
	assert.Equal(t, "image/svg+xml", *resp.Event.LogoMimeType)
}

func TestLoginSingleFailureMode(t *testing.T) {
	handler, _ := newTestServer(t)

	event := createEventViaAPI(t, handler, "Hike2024")
	createTeamViaAPI(t, handler, event.ID, "Red")
	createTeamViaAPI(t, handler, event.ID, "Alpha")

	// Success: event plus teams ordered by name.
	var resp LoginResponse
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/login", map[string]interface{}{
		"event_name": "Hike2024",
		"keycode":    event.Keycode,
	}, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, event.Keycode, resp.Event.Keycode)
	require.Len(t, resp.Teams, 2)
	assert.Equal(t, "Alpha", resp.Teams[0].Name)
	assert.Equal(t, "Red", resp.Teams[1].Name)

	// Wrong name, wrong keycode, or both: identical failures.
	var bodies []string
	for _, payload := range []map[string]interface{}{
		{"event_name": "NoSuch", "keycode": event.Keycode},
		{"event_name": "Hike2024", "keycode": "WRONG000"},
		{"event_name": "NoSuch", "keycode": "WRONG000"},
	} {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/login", payload, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		bodies = append(bodies, rec.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[1], bodies[2])
}
