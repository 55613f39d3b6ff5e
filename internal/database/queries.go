package database

import (
	"database/sql"
	"errors"
	"time"
)

// DBorTx is an interface that allows functions to accept either a `*sql.DB` for single queries
// or a `*sql.Tx` for operations within a transaction. This promotes code reuse.
type DBorTx interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// nullable converts an optional string into a driver-friendly value, storing
// NULL instead of an empty string.
func nullable(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

// --- Event Queries ---

// CreateEventParams carries the caller-supplied fields of a new event.
// The keycode is generated by the caller before insertion.
type CreateEventParams struct {
	Name             string
	Keycode          string
	OrganizationName *string
	ImageData        *string
	ImageMimeType    *string
	LogoData         *string
	LogoMimeType     *string
	ExpirationDate   *string
}

func (s *Service) CreateEvent(db DBorTx, p CreateEventParams) (*Event, error) {
	query := `
		INSERT INTO events (name, keycode, organization_name, image_data, image_mime_type, logo_data, logo_mime_type, expiration_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
	res, err := db.Exec(query,
		p.Name, p.Keycode,
		nullable(p.OrganizationName),
		nullable(p.ImageData), nullable(p.ImageMimeType),
		nullable(p.LogoData), nullable(p.LogoMimeType),
		nullable(p.ExpirationDate),
	)
	if err != nil {
		return nil, translateConstraint(err)
	}
	id, _ := res.LastInsertId()
	return s.GetEventByID(db, id)
}

func scanEvent(row *sql.Row) (*Event, error) {
	event := &Event{}
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Keycode,
		&event.ImageData,
		&event.ImageMimeType,
		&event.LogoData,
		&event.LogoMimeType,
		&event.OrganizationName,
		&event.ExpirationDate,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

const eventColumns = `id, name, keycode, image_data, image_mime_type, logo_data, logo_mime_type, organization_name, expiration_date`

func (s *Service) GetEventByID(db DBorTx, id int64) (*Event, error) {
	event, err := scanEvent(db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return event, err
}

func (s *Service) GetEventByName(db DBorTx, name string) (*Event, error) {
	event, err := scanEvent(db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE name = ?;`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return event, err
}

// GetEventByIDAndKeycode is the authorization check behind every privileged
// mutation. A missing event and a wrong keycode are indistinguishable to the
// caller: both come back as ErrUnauthorized.
func (s *Service) GetEventByIDAndKeycode(db DBorTx, id int64, keycode string) (*Event, error) {
	event, err := scanEvent(db.QueryRow(
		`SELECT `+eventColumns+` FROM events WHERE id = ? AND keycode = ?;`, id, keycode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnauthorized
	}
	return event, err
}

// GetEventByNameAndKeycode backs the login query. Same single failure mode as
// GetEventByIDAndKeycode, under the login-specific error.
func (s *Service) GetEventByNameAndKeycode(db DBorTx, name, keycode string) (*Event, error) {
	event, err := scanEvent(db.QueryRow(
		`SELECT `+eventColumns+` FROM events WHERE name = ? AND keycode = ?;`, name, keycode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	return event, err
}

func (s *Service) UpdateEventImage(db DBorTx, id int64, imageData, imageMimeType string) error {
	res, err := db.Exec(`UPDATE events SET image_data = ?, image_mime_type = ? WHERE id = ?;`,
		imageData, imageMimeType, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) UpdateEventLogo(db DBorTx, id int64, logoData, logoMimeType string) error {
	res, err := db.Exec(`UPDATE events SET logo_data = ?, logo_mime_type = ? WHERE id = ?;`,
		logoData, logoMimeType, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) UpdateEventOrganizationName(db DBorTx, id int64, organizationName string) error {
	res, err := db.Exec(`UPDATE events SET organization_name = ? WHERE id = ?;`,
		organizationName, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Team Queries ---

func (s *Service) CreateTeam(db DBorTx, eventID int64, name, color string, expirationDate *string) (*Team, error) {
	query := `INSERT INTO teams (event_id, name, color, expiration_date) VALUES (?, ?, ?, ?);`
	res, err := db.Exec(query, eventID, name, color, nullable(expirationDate))
	if err != nil {
		return nil, translateConstraint(err)
	}
	id, _ := res.LastInsertId()
	return s.GetTeamByID(db, id)
}

func (s *Service) GetTeamByID(db DBorTx, id int64) (*Team, error) {
	query := `SELECT id, event_id, name, color, expiration_date FROM teams WHERE id = ?;`
	team := &Team{}
	err := db.QueryRow(query, id).Scan(&team.ID, &team.EventID, &team.Name, &team.Color, &team.ExpirationDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *Service) GetTeamsByEventID(db DBorTx, eventID int64) ([]*Team, error) {
	query := `
		SELECT id, event_id, name, color, expiration_date
		FROM teams
		WHERE event_id = ?
		ORDER BY name ASC;`

	rows, err := db.Query(query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*Team
	for rows.Next() {
		team := &Team{}
		if err := rows.Scan(&team.ID, &team.EventID, &team.Name, &team.Color, &team.ExpirationDate); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (s *Service) UpdateTeamColor(db DBorTx, teamID int64, newColor string) error {
	res, err := db.Exec(`UPDATE teams SET color = ? WHERE id = ?;`, newColor, teamID)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Location Update Queries ---

// CreateLocationUpdate inserts a new GPS reading. The guarded INSERT ... SELECT
// only produces a row when the (team, event) name pair matches an existing
// team of that event, which stands in for the foreign key SQLite cannot
// express against the per-event-unique team name.
func (s *Service) CreateLocationUpdate(db DBorTx, team, event string, lat, lon float64, timestamp time.Time) (*LocationUpdate, error) {
	query := `
		INSERT INTO location_updates (team, event, lat, lon, timestamp)
		SELECT ?, ?, ?, ?, ?
		WHERE EXISTS (
			SELECT 1 FROM teams t
			JOIN events e ON e.id = t.event_id
			WHERE t.name = ? AND e.name = ?
		);`
	// All timestamps are stored in UTC so that ordering and range filters
	// compare consistently.
	ts := timestamp.UTC()
	res, err := db.Exec(query, team, event, lat, lon, ts, team, event)
	if err != nil {
		return nil, translateConstraint(err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return nil, ErrConstraintViolation
	}
	id, _ := res.LastInsertId()
	return s.GetLocationUpdateByID(db, id)
}

func (s *Service) GetLocationUpdateByID(db DBorTx, id int64) (*LocationUpdate, error) {
	query := `SELECT id, team, event, lat, lon, timestamp FROM location_updates WHERE id = ?;`
	u := &LocationUpdate{}
	err := db.QueryRow(query, id).Scan(&u.ID, &u.Team, &u.Event, &u.Lat, &u.Lon, &u.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUpdatesByTeam returns the most recent `limit` location updates for a
// team, newest first.
func (s *Service) GetUpdatesByTeam(db DBorTx, team string, limit int) ([]*LocationUpdate, error) {
	query := `
		SELECT id, team, event, lat, lon, timestamp
		FROM location_updates
		WHERE team = ?
		ORDER BY timestamp DESC
		LIMIT ?;`

	rows, err := db.Query(query, team, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLocationUpdates(rows)
}

// GetTeamHistory returns a team's full location history in ascending
// timestamp order, optionally bounded by an inclusive [start, end] window.
// Either bound may be nil independently. The event name is part of the key
// because team names are only unique within an event.
func (s *Service) GetTeamHistory(db DBorTx, team, event string, start, end *time.Time) ([]*LocationUpdate, error) {
	query := `
		SELECT id, team, event, lat, lon, timestamp
		FROM location_updates
		WHERE team = ? AND event = ?`
	args := []interface{}{team, event}

	if start != nil {
		query += ` AND timestamp >= ?`
		args = append(args, start.UTC())
	}
	if end != nil {
		query += ` AND timestamp <= ?`
		args = append(args, end.UTC())
	}
	query += ` ORDER BY timestamp ASC;`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLocationUpdates(rows)
}

func scanLocationUpdates(rows *sql.Rows) ([]*LocationUpdate, error) {
	var updates []*LocationUpdate
	for rows.Next() {
		u := &LocationUpdate{}
		if err := rows.Scan(&u.ID, &u.Team, &u.Event, &u.Lat, &u.Lon, &u.Timestamp); err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

// --- Expiration Sweep Queries ---

// DeleteExpiredTeams removes every team whose own expiration date has passed,
// regardless of the state of its event. The delete trigger takes each team's
// location history with it. Returns the number of teams deleted.
func (s *Service) DeleteExpiredTeams(db DBorTx) (int64, error) {
	res, err := db.Exec(`
		DELETE FROM teams
		WHERE expiration_date IS NOT NULL
		  AND date(expiration_date) < date('now');`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpiredEvents removes every event whose expiration date has passed,
// cascading to its teams and their location histories. Returns the number of
// events deleted.
func (s *Service) DeleteExpiredEvents(db DBorTx) (int64, error) {
	res, err := db.Exec(`
		DELETE FROM events
		WHERE expiration_date IS NOT NULL
		  AND date(expiration_date) < date('now');`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
