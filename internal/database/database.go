package database

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite" // The pure Go SQLite driver
)

// Service is the central struct for managing all database interactions.
// It holds the connection to the tracker database and serializes write
// operations through a mutex, since SQLite allows many concurrent readers
// but only one writer at a time.
type Service struct {
	dbPath string
	db     *sql.DB

	writeLock sync.Mutex
}

// NewService creates and initializes a new database service.
// It opens the database connection and prepares the service for use.
func NewService(dbPath string) (*Service, error) {
	// Enabling foreign keys is crucial for data integrity: the cascade from
	// events to teams and location updates depends on it.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", dbPath, err)
	}

	// Ping the database to ensure the connection is alive.
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", dbPath, err)
	}

	return &Service{
		dbPath: dbPath,
		db:     db,
	}, nil
}

// DB provides a direct connection for read-only queries.
func (s *Service) DB() *sql.DB {
	return s.db
}

// Write executes a write operation (INSERT, UPDATE, DELETE) within a
// transaction, protected by the mutex to ensure serial access.
func (s *Service) Write(writeFunc func(tx *sql.Tx) error) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Execute the provided function. If it returns an error, roll back.
	if err := writeFunc(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// Close safely closes the database connection when the application shuts down.
func (s *Service) Close() {
	s.db.Close()
	log.Println("INFO: Database connection closed.")
}

// InitSchema sets up the schema if the tables don't exist. It is idempotent
// and safe to run on every application start; main calls it once before the
// server begins accepting traffic.
func (s *Service) InitSchema() error {
	return s.Write(func(tx *sql.Tx) error {
		// Events table. The keycode is the event's authentication secret,
		// generated once at creation and never changed.
		_, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS events (
				id INTEGER PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				keycode TEXT NOT NULL,
				image_data TEXT,
				image_mime_type TEXT,
				logo_data TEXT,
				logo_mime_type TEXT,
				organization_name TEXT,
				expiration_date TEXT
			);`)
		if err != nil {
			return err
		}

		// Teams table. Team names are unique per event, not globally.
		_, err = tx.Exec(`
			CREATE TABLE IF NOT EXISTS teams (
				id INTEGER PRIMARY KEY,
				event_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				color TEXT NOT NULL DEFAULT '#3B82F6',
				expiration_date TEXT,
				UNIQUE (event_id, name),
				FOREIGN KEY (event_id) REFERENCES events (id) ON DELETE CASCADE
			);`)
		if err != nil {
			return err
		}

		// Location updates reference teams and events by NAME. SQLite only
		// allows a declarative foreign key against a uniquely-indexed parent
		// column, which events.name is but teams.name is not, so the event
		// side cascades via the foreign key and the team side via the
		// trigger below.
		_, err = tx.Exec(`
			CREATE TABLE IF NOT EXISTS location_updates (
				id INTEGER PRIMARY KEY,
				team TEXT NOT NULL,
				event TEXT NOT NULL,
				lat REAL NOT NULL,
				lon REAL NOT NULL,
				timestamp DATETIME NOT NULL,
				FOREIGN KEY (event) REFERENCES events (name) ON DELETE CASCADE
			);`)
		if err != nil {
			return err
		}

		// Deleting a team removes its location history. The event name is
		// resolved at delete time; when the team is going away because its
		// whole event was deleted, the event-side cascade has already
		// removed the rows and this is a no-op.
		_, err = tx.Exec(`
			CREATE TRIGGER IF NOT EXISTS trg_teams_delete_updates
			AFTER DELETE ON teams
			BEGIN
				DELETE FROM location_updates
				WHERE team = OLD.name
				  AND event = (SELECT name FROM events WHERE id = OLD.event_id);
			END;`)
		if err != nil {
			return err
		}

		// Indexes for the hot paths: team listings, per-team history reads,
		// "most recent N" queries, and login lookups.
		for _, stmt := range []string{
			`CREATE INDEX IF NOT EXISTS idx_teams_event_id ON teams (event_id);`,
			`CREATE INDEX IF NOT EXISTS idx_location_updates_team ON location_updates (team);`,
			`CREATE INDEX IF NOT EXISTS idx_location_updates_timestamp ON location_updates (timestamp DESC);`,
			`CREATE INDEX IF NOT EXISTS idx_events_name_keycode ON events (name, keycode);`,
		} {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}

		return nil
	})
}
