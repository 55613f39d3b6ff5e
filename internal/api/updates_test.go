package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTrackerBeaconScenario walks the happy path end to end: create an event,
// add a team, submit a reading without a timestamp, read it back.
func TestTrackerBeaconScenario(t *testing.T) {
	handler, _ := newTestServer(t)

	event := createEventViaAPI(t, handler, "Hike2024")
	require.Len(t, event.Keycode, 8)

	team := createTeamViaAPI(t, handler, event.ID, "Red")
	assert.Equal(t, defaultTeamColor, team.Color)

	before := time.Now().UTC()
	var created struct {
		Update LocationUpdateResponse `json:"update"`
	}
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/updates", map[string]interface{}{
		"team":  "Red",
		"event": "Hike2024",
		"lat":   45.5,
		"lon":   -122.6,
	}, &created)
	require.Equal(t, http.StatusCreated, rec.Code)
	after := time.Now().UTC()

	assert.Equal(t, 45.5, created.Update.Lat)
	assert.Equal(t, -122.6, created.Update.Lon)

	// With no timestamp supplied, the stored one is the submission time.
	stored, err := time.Parse(time.RFC3339Nano, created.Update.Timestamp)
	require.NoError(t, err)
	assert.False(t, stored.Before(before.Truncate(time.Second)))
	assert.False(t, stored.After(after.Add(time.Second)))

	var listed struct {
		Updates []LocationUpdateResponse `json:"updates"`
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/updates?team=Red&limit=10", nil, &listed)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, listed.Updates, 1)
	assert.Equal(t, created.Update.ID, listed.Updates[0].ID)
}

func TestCreateLocationUpdateUnknownPair(t *testing.T) {
	handler, _ := newTestServer(t)

	event := createEventViaAPI(t, handler, "Hike2024")
	createTeamViaAPI(t, handler, event.ID, "Red")

	// A reading for a team that is not part of the named event is rejected
	// by the persistence layer's reference check.
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/updates", map[string]interface{}{
		"team":  "Blue",
		"event": "Hike2024",
		"lat":   1.0,
		"lon":   1.0,
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetUpdatesOrderingAndDefaultLimit(t *testing.T) {
	handler, _ := newTestServer(t)

	event := createEventViaAPI(t, handler, "Hike2024")
	createTeamViaAPI(t, handler, event.ID, "Red")

	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/updates", map[string]interface{}{
			"team":      "Red",
			"event":     "Hike2024",
			"lat":       45.0 + float64(i),
			"lon":       -122.0,
			"timestamp": base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var listed struct {
		Updates []LocationUpdateResponse `json:"updates"`
	}
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/updates?team=Red", nil, &listed)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, listed.Updates, 3)
	// Newest first.
	assert.Equal(t, 47.0, listed.Updates[0].Lat)
	assert.Equal(t, 45.0, listed.Updates[2].Lat)
}

func TestGetUpdatesValidation(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/updates", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/updates?team=Red&limit=nope", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLocationUpdateValidation(t *testing.T) {
	handler, _ := newTestServer(t)

	// Missing coordinates must be caught before touching storage; lat=0 is a
	// legitimate reading, absence is not.
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/updates", map[string]interface{}{
		"team":  "Red",
		"event": "Hike2024",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/updates", map[string]interface{}{
		"team":      "Red",
		"event":     "Hike2024",
		"lat":       1.0,
		"lon":       1.0,
		"timestamp": "not-a-time",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
