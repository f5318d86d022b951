// internal/sim/hints.go
package sim

import (
	"github.com/jason-s-yu/cyberrange/internal/protocol"
)

// Hint is one rationed nudge toward an incomplete objective.
type Hint struct {
	ObjectiveID string `json:"objective_id"`
	Hint        string `json:"hint"`
}

// RequestHints answers a request_hints message with the next batch of hints,
// bounded by the difficulty quota.
func (s *Session) RequestHints(conn *ParticipantConn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := ProfileFor(s.difficulty)
	if !profile.HintsEnabled {
		s.sendToUnsafe(conn.Name, map[string]interface{}{
			"type":    protocol.TypeHints,
			"hints":   []Hint{},
			"message": "Hints are disabled for this difficulty.",
		})
		return
	}
	hints := s.hintsForUnsafe(conn.Name)
	remaining := profile.HintsQuota - s.hintUsage[conn.Name]
	if remaining < 0 {
		remaining = 0
	}
	s.sendToUnsafe(conn.Name, map[string]interface{}{
		"type":      protocol.TypeHints,
		"hints":     hints,
		"remaining": remaining,
	})
}

// hintsForUnsafe issues at most one hint per incomplete objective, in
// assignment order, stopping when the participant's quota runs out. Each
// objective reveals its trigger keywords progressively across calls; once an
// objective's keywords are exhausted it yields nothing further. Assumes the
// lock is held.
func (s *Session) hintsForUnsafe(name string) []Hint {
	profile := ProfileFor(s.difficulty)
	if !profile.HintsEnabled {
		return nil
	}
	remaining := profile.HintsQuota - s.hintUsage[name]
	if remaining <= 0 {
		return nil
	}

	cursors, ok := s.hintProgress[name]
	if !ok {
		cursors = make(map[string]int)
		s.hintProgress[name] = cursors
	}

	var hints []Hint
	for _, obj := range s.attackerObjectives[name] {
		if remaining <= 0 {
			break
		}
		if obj.Completed {
			continue
		}
		entry, ok := poolEntryByID(obj.ID)
		if !ok || len(entry.Triggers) == 0 {
			continue
		}
		cursor := cursors[obj.ID]
		if cursor >= len(entry.Triggers) {
			continue // every keyword already revealed, never repeat
		}
		keyword := entry.Triggers[cursor]
		cursors[obj.ID] = cursor + 1
		hints = append(hints, Hint{ObjectiveID: obj.ID, Hint: "Try using: " + keyword})
		remaining--
	}
	s.hintUsage[name] += len(hints)
	return hints
}
