// internal/handlers/server.go
package handlers

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cyberrange/internal/instructor"
	"github.com/jason-s-yu/cyberrange/internal/middleware"
	"github.com/jason-s-yu/cyberrange/internal/sim"
)

// Server bundles the session registry and the instructor hub behind the HTTP
// and WebSocket surface.
type Server struct {
	Logger   *logrus.Logger
	Registry sim.Store
	Hub      *instructor.Hub
}

// NewServer wires a registry and hub together. The hub doubles as the event
// sink the registry hands to every session it creates.
func NewServer(logger *logrus.Logger, opts sim.Options) *Server {
	hub := instructor.NewHub()
	opts.Sink = hub
	return &Server{
		Logger:   logger,
		Registry: sim.NewRegistry(opts),
		Hub:      hub,
	}
}

// Routes builds the full router: instructor REST endpoints plus the two
// WebSocket channels.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.LogMiddleware(s.Logger))

	r.HandleFunc("/lobby/create/{code}", s.CreateLobbyHandler).Methods("POST")
	r.HandleFunc("/lobby/close/{code}", s.CloseLobbyHandler).Methods("POST")
	r.HandleFunc("/lobby/list", s.ListLobbiesHandler).Methods("GET")

	r.HandleFunc("/simulation/ws/{code}", SimulationWSHandler(s.Logger, s))
	r.HandleFunc("/instructor/ws/{code}", InstructorWSHandler(s.Logger, s))

	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	return r
}
