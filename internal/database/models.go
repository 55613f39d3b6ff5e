package database

import (
	"database/sql"
	"time"
)

// Event represents a record in the 'events' table. It uses `sql.NullString`
// for fields that can be NULL in the database, such as the branding images of
// an event that never uploaded any.
//
// The Keycode is the event's authentication secret. It is never written to a
// public response by the API layer; the database model carries it so the
// authenticated paths (login, export) can return it.
type Event struct {
	ID               int64
	Name             string
	Keycode          string
	ImageData        sql.NullString
	ImageMimeType    sql.NullString
	LogoData         sql.NullString
	LogoMimeType     sql.NullString
	OrganizationName sql.NullString
	ExpirationDate   sql.NullString // calendar date, "YYYY-MM-DD"
}

// Team represents a record in the 'teams' table. A team belongs to exactly
// one event and is deleted along with it.
type Team struct {
	ID             int64
	EventID        int64
	Name           string
	Color          string
	ExpirationDate sql.NullString // calendar date, "YYYY-MM-DD"
}

// LocationUpdate represents a record in the 'location_updates' table.
// Team and Event reference the owning rows by NAME, not id. This is an
// intentional denormalization: tracker beacons only know the human-readable
// names they were configured with.
type LocationUpdate struct {
	ID        int64
	Team      string
	Event     string
	Lat       float64
	Lon       float64
	Timestamp time.Time
}
