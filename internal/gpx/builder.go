package gpx

import (
	"time"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/intermernet/teamtrack/internal/database"
)

// TeamTrack pairs a team with its location history, ready to be turned into
// a GPX track. Points are expected in ascending timestamp order.
type TeamTrack struct {
	TeamName string
	Updates  []*database.LocationUpdate
}

// BuildDocument assembles a GPX 1.1 document with one track per team, each
// track holding a single segment of timestamped points. The result can be
// opened in any mapping tool for after-event review.
func BuildDocument(eventName string, tracks []TeamTrack) ([]byte, error) {
	doc := &gpx.GPX{
		Version: "1.1",
		Creator: "teamtrack",
		Name:    eventName,
		Time:    ptrTime(time.Now().UTC()),
	}

	for _, track := range tracks {
		segment := gpx.GPXTrackSegment{}
		for _, u := range track.Updates {
			segment.Points = append(segment.Points, gpx.GPXPoint{
				Point: gpx.Point{
					Latitude:  u.Lat,
					Longitude: u.Lon,
				},
				Timestamp: u.Timestamp,
			})
		}
		doc.Tracks = append(doc.Tracks, gpx.GPXTrack{
			Name:     track.TeamName,
			Segments: []gpx.GPXTrackSegment{segment},
		})
	}

	return gpx.ToXml(doc, gpx.ToXmlParams{Version: "1.1", Indent: true})
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
