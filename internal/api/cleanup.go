package api

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
)

// handleCleanup runs the expiration sweep: every team whose own expiration
// date has passed is deleted, then every expired event (cascading to its
// teams and their histories). The two predicates are independent: a team can
// expire under a live event, and a live team dies with its expired event.
//
// The endpoint is called by an external scheduler; the operator secret rides
// in the Authorization header as a bearer token. The sweep is idempotent, so
// an overlapping or repeated trigger just reports zero deletions.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	secret := bearerToken(r)
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.config.CleanupSecret)) != 1 {
		s.errorJSON(w, errors.New("unauthorized"), http.StatusUnauthorized)
		return
	}

	var deletedTeams, deletedEvents int64
	err := s.db.Write(func(tx *sql.Tx) error {
		var txErr error
		// Teams first: a team expired under a live event must go even though
		// its event stays. Expired events then take their remaining teams
		// with them via the cascade, which does not touch these counts.
		deletedTeams, txErr = s.db.DeleteExpiredTeams(tx)
		if txErr != nil {
			return txErr
		}
		deletedEvents, txErr = s.db.DeleteExpiredEvents(tx)
		return txErr
	})
	if err != nil {
		s.errorJSON(w, errors.New("cleanup failed"), http.StatusInternalServerError)
		return
	}

	log.Printf("INFO: Expiration sweep removed %d team(s) and %d event(s).", deletedTeams, deletedEvents)

	s.writeJSON(w, http.StatusOK, CleanupResponse{
		DeletedTeams:  deletedTeams,
		DeletedEvents: deletedEvents,
		Message:       "cleanup completed",
	})
}

// bearerToken extracts the token from an "Authorization: Bearer ..." header.
func bearerToken(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
