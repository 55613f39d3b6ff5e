package gpx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gpxlib "github.com/tkrajina/gpxgo/gpx"

	"github.com/intermernet/teamtrack/internal/database"
)

func TestBuildDocumentRoundTrip(t *testing.T) {
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	tracks := []TeamTrack{
		{
			TeamName: "Red",
			Updates: []*database.LocationUpdate{
				{Lat: 45.5, Lon: -122.6, Timestamp: base},
				{Lat: 45.6, Lon: -122.7, Timestamp: base.Add(time.Minute)},
			},
		},
		{
			TeamName: "Blue",
			Updates:  nil, // a team with no readings still gets an empty track
		},
	}

	raw, err := BuildDocument("Hike2024", tracks)
	require.NoError(t, err)

	// The output must parse back with the same library the rest of the
	// ecosystem uses.
	doc, err := gpxlib.ParseBytes(raw)
	require.NoError(t, err)

	assert.Equal(t, "Hike2024", doc.Name)
	require.Len(t, doc.Tracks, 2)
	assert.Equal(t, "Red", doc.Tracks[0].Name)
	assert.Equal(t, "Blue", doc.Tracks[1].Name)

	require.Len(t, doc.Tracks[0].Segments, 1)
	points := doc.Tracks[0].Segments[0].Points
	require.Len(t, points, 2)
	assert.InDelta(t, 45.5, points[0].Latitude, 1e-9)
	assert.InDelta(t, -122.6, points[0].Longitude, 1e-9)
	assert.True(t, points[1].Timestamp.After(points[0].Timestamp))
}
