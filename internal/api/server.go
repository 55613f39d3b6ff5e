package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/intermernet/teamtrack/internal/config"
	"github.com/intermernet/teamtrack/internal/database"
)

// Server is the main struct for the API. It holds all dependencies required
// by the HTTP handlers, such as the application configuration and the database
// service. This approach, known as dependency injection, makes the application
// modular and easier to test.
type Server struct {
	config *config.Config
	db     *database.Service
}

// NewServer is a constructor function that creates and returns a new instance
// of the Server, wiring the configuration and database service into it.
func NewServer(cfg *config.Config, db *database.Service) *Server {
	return &Server{
		config: cfg,
		db:     db,
	}
}

// envelope is a custom map type used for creating structured JSON responses,
// e.g. `envelope{"event": eventObject}`.
type envelope map[string]interface{}

// writeJSON is a helper method for sending JSON responses. It marshals the
// data to JSON, sets the 'Content-Type' header and writes the status code.
// Centralizing response logic keeps all JSON responses consistent.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		// If marshaling fails, it's a server-side error. Send plain text
		// because we can't be sure our JSON error format would be valid.
		http.Error(w, "Internal Server Error: Failed to marshal JSON", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

// errorJSON is a helper method for sending standardized JSON error responses
// in the shape `{"error": "message"}`.
func (s *Server) errorJSON(w http.ResponseWriter, err error, status ...int) {
	statusCode := http.StatusInternalServerError
	if len(status) > 0 {
		statusCode = status[0]
	}

	s.writeJSON(w, statusCode, envelope{"error": err.Error()})
}

// operationError maps the query layer's sentinel errors onto HTTP statuses.
// Anything unrecognized is a 500.
func (s *Server) operationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		s.errorJSON(w, err, http.StatusNotFound)
	case errors.Is(err, database.ErrUnauthorized), errors.Is(err, database.ErrInvalidCredentials):
		s.errorJSON(w, err, http.StatusUnauthorized)
	case errors.Is(err, database.ErrConstraintViolation):
		s.errorJSON(w, err, http.StatusConflict)
	default:
		s.errorJSON(w, err, http.StatusInternalServerError)
	}
}
