// internal/sim/broadcast.go
package sim

import (
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cyberrange/internal/protocol"
)

// ParticipantConn is a single participant's presence in a session. The
// session owns the handle; the connection side only drains OutChan.
type ParticipantConn struct {
	Name    string
	Role    protocol.Role
	Cancel  func()
	OutChan chan map[string]interface{}
}

// NewParticipantConn builds a handle with a buffered outbound channel.
func NewParticipantConn(name string, role protocol.Role) *ParticipantConn {
	return &ParticipantConn{
		Name:    name,
		Role:    role,
		OutChan: make(chan map[string]interface{}, 16),
	}
}

// Write pushes a message onto the participant's OutChan without blocking.
// Returns false when the channel is full or closed, which the caller treats
// as a dead recipient.
func (c *ParticipantConn) Write(msg map[string]interface{}) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			// Send on closed channel: connection already torn down.
			ok = false
		}
	}()
	select {
	case c.OutChan <- msg:
		return true
	default:
		msgType, _ := msg["type"].(string)
		log.Warnf("participant %s: OutChan full or closed, dropped message type %q", c.Name, msgType)
		return false
	}
}

// WriteError is a convenience to send a soft error event.
func (c *ParticipantConn) WriteError(msg string) {
	c.Write(map[string]interface{}{
		"type":    protocol.TypeError,
		"message": msg,
	})
}

// broadcastUnsafe dispatches msg to every participant, filtered by role when
// roles is non-empty. Each recipient is dispatched independently; failures are
// accumulated and the failed participants pruned only after the full pass, so
// one dead connection never blocks delivery to the rest. Assumes the session
// lock is held. Returns the names that were pruned.
func (s *Session) broadcastUnsafe(msg map[string]interface{}, roles ...protocol.Role) []string {
	var failed []string
	for name, conn := range s.participants {
		if len(roles) > 0 && !roleIn(conn.Role, roles) {
			continue
		}
		if !conn.Write(msg) {
			failed = append(failed, name)
		}
	}
	for _, name := range failed {
		s.dropParticipantUnsafe(name)
	}
	return failed
}

// sendToUnsafe delivers a message to one named participant, pruning them on
// failure. Assumes the session lock is held.
func (s *Session) sendToUnsafe(name string, msg map[string]interface{}) {
	conn, ok := s.participants[name]
	if !ok {
		return
	}
	if !conn.Write(msg) {
		s.dropParticipantUnsafe(name)
	}
}

// dropParticipantUnsafe removes a participant whose connection failed and
// signals its write pump to stop. Assumes the session lock is held.
func (s *Session) dropParticipantUnsafe(name string) {
	conn, ok := s.participants[name]
	if !ok {
		return
	}
	delete(s.participants, name)
	go func(c *ParticipantConn) {
		defer func() { recover() }() // OutChan may already be closed
		close(c.OutChan)
		if c.Cancel != nil {
			c.Cancel()
		}
	}(conn)
	log.Infof("session %s: pruned unreachable participant %s", s.Code, name)
}

func roleIn(r protocol.Role, set []protocol.Role) bool {
	for _, candidate := range set {
		if r == candidate {
			return true
		}
	}
	return false
}
