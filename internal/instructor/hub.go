// internal/instructor/hub.go
package instructor

import (
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cyberrange/internal/protocol"
	"github.com/jason-s-yu/cyberrange/internal/sim"
)

// Conn is one instructor dashboard connection. Like participant handles, the
// hub only ever pushes onto OutChan; the websocket side drains it.
type Conn struct {
	ID      uuid.UUID
	OutChan chan map[string]interface{}
	Cancel  func()
}

// NewConn builds an instructor connection handle with a buffered channel.
func NewConn() *Conn {
	return &Conn{
		ID:      uuid.New(),
		OutChan: make(chan map[string]interface{}, 32),
	}
}

// write pushes without blocking. Returns false for a full or closed channel.
func (c *Conn) write(msg map[string]interface{}) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	select {
	case c.OutChan <- msg:
		return true
	default:
		log.Warnf("instructor %s: OutChan full or closed, dropped message", c.ID)
		return false
	}
}

// Hub fans session events and metrics out to the instructor dashboards
// watching each lobby. It implements the session event sink, which keeps the
// simulation side decoupled from dashboard connection management.
type Hub struct {
	mu    sync.Mutex
	conns map[string][]*Conn
}

// NewHub initializes an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string][]*Conn)}
}

// Add registers a dashboard connection for a lobby code.
func (h *Hub) Add(code string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[code] = append(h.conns[code], c)
	log.Infof("instructor hub: connection %s watching lobby %s", c.ID, code)
}

// Remove detaches a dashboard connection and closes its channel.
func (h *Hub) Remove(code string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeUnsafe(code, c)
}

func (h *Hub) removeUnsafe(code string, c *Conn) {
	list := h.conns[code]
	for i, candidate := range list {
		if candidate == c {
			h.conns[code] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(h.conns[code]) == 0 {
		delete(h.conns, code)
	}
	go func() {
		defer func() { recover() }() // OutChan may already be closed
		close(c.OutChan)
		if c.Cancel != nil {
			c.Cancel()
		}
	}()
}

// broadcast sends to every dashboard watching a lobby, pruning dead ones after
// the pass.
func (h *Hub) broadcast(code string, msg map[string]interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var failed []*Conn
	for _, c := range h.conns[code] {
		if !c.write(msg) {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		h.removeUnsafe(code, c)
	}
}

// Event mirrors one instructor-relevant session event.
func (h *Hub) Event(code, eventType, description, participant string) {
	h.broadcast(code, map[string]interface{}{
		"type": protocol.TypeSimulationEvent,
		"event": map[string]interface{}{
			"event_type":  eventType,
			"description": description,
			"participant": participant,
		},
	})
}

// Metrics pushes a fresh counter snapshot.
func (h *Hub) Metrics(code string, snap sim.MetricsSnapshot) {
	h.broadcast(code, map[string]interface{}{
		"type":    protocol.TypeSimulationMetrics,
		"metrics": snap,
	})
}

// State announces a lifecycle transition (pause, resume, end).
func (h *Hub) State(code string, status protocol.Status) {
	h.broadcast(code, map[string]interface{}{
		"type":   protocol.TypeSessionState,
		"status": status,
	})
}

// Participants pushes the current roster after a join or leave.
func (h *Hub) Participants(code string, roster []sim.ParticipantInfo) {
	h.broadcast(code, map[string]interface{}{
		"type":         protocol.TypeParticipantUpdate,
		"participants": roster,
	})
}
