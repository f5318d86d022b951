// internal/handlers/lobby.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jason-s-yu/cyberrange/internal/auth"
	"github.com/jason-s-yu/cyberrange/internal/protocol"
)

// lobbySummary is the REST view of one active session.
type lobbySummary struct {
	Code         string          `json:"code"`
	Status       protocol.Status `json:"status"`
	Difficulty   string          `json:"difficulty"`
	Participants int             `json:"participants"`
}

// CreateLobbyHandler creates a session for a lobby code ahead of any
// participant connecting. Idempotent: creating an existing lobby returns it.
func (s *Server) CreateLobbyHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r, string(protocol.RoleInstructor)); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	code := mux.Vars(r)["code"]
	if code == "" {
		http.Error(w, "missing lobby code", http.StatusBadRequest)
		return
	}

	sess := s.Registry.GetOrCreate(code)

	if body := r.Body; body != nil {
		var payload struct {
			Difficulty string `json:"difficulty"`
		}
		if err := json.NewDecoder(body).Decode(&payload); err == nil && payload.Difficulty != "" {
			if err := sess.SetDifficulty(payload.Difficulty); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lobbySummary{
		Code:         code,
		Status:       sess.Status(),
		Difficulty:   sess.Difficulty(),
		Participants: sess.ParticipantCount(),
	})
}

// CloseLobbyHandler ends a session and reaps it from the registry. Connected
// participants receive the end broadcast before their channels drain out.
func (s *Server) CloseLobbyHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireRole(r, string(protocol.RoleInstructor))
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	code := mux.Vars(r)["code"]

	sess, ok := s.Registry.Get(code)
	if !ok {
		http.Error(w, "no active session for lobby "+code, http.StatusNotFound)
		return
	}
	sess.End(claims.Subject)
	s.Registry.Delete(code)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "closed", "code": code})
}

// ListLobbiesHandler returns a summary of every active session.
func (s *Server) ListLobbiesHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireRole(r, string(protocol.RoleInstructor)); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	sessions := s.Registry.List()
	summaries := make([]lobbySummary, 0, len(sessions))
	for code, sess := range sessions {
		summaries = append(summaries, lobbySummary{
			Code:         code,
			Status:       sess.Status(),
			Difficulty:   sess.Difficulty(),
			Participants: sess.ParticipantCount(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

// HealthHandler is a trivial liveness probe.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
