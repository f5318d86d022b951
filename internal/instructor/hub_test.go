// internal/instructor/hub_test.go
package instructor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/cyberrange/internal/protocol"
	"github.com/jason-s-yu/cyberrange/internal/sim"
)

func drainConn(c *Conn) []map[string]interface{} {
	var msgs []map[string]interface{}
	for {
		select {
		case m := <-c.OutChan:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func TestHubFansOutToWatchersOfOneLobby(t *testing.T) {
	h := NewHub()
	a := NewConn()
	b := NewConn()
	other := NewConn()
	h.Add("alpha", a)
	h.Add("alpha", b)
	h.Add("bravo", other)

	h.Event("alpha", "attack", "mallory executed: nmap", "mallory")

	for _, c := range []*Conn{a, b} {
		msgs := drainConn(c)
		require.Len(t, msgs, 1)
		assert.Equal(t, protocol.TypeSimulationEvent, msgs[0]["type"])
		ev := msgs[0]["event"].(map[string]interface{})
		assert.Equal(t, "attack", ev["event_type"])
		assert.Equal(t, "mallory", ev["participant"])
	}
	assert.Empty(t, drainConn(other), "other lobbies see nothing")
}

func TestHubMetricsAndState(t *testing.T) {
	h := NewHub()
	c := NewConn()
	h.Add("alpha", c)

	h.Metrics("alpha", sim.MetricsSnapshot{TotalEvents: 3, AttacksLaunched: 2, Participants: 4})
	h.State("alpha", protocol.StatusPaused)
	h.Participants("alpha", []sim.ParticipantInfo{{Name: "mallory", Role: protocol.RoleAttacker}})

	msgs := drainConn(c)
	require.Len(t, msgs, 3)
	assert.Equal(t, protocol.TypeSimulationMetrics, msgs[0]["type"])
	snap := msgs[0]["metrics"].(sim.MetricsSnapshot)
	assert.Equal(t, 3, snap.TotalEvents)
	assert.Equal(t, 4, snap.Participants)

	assert.Equal(t, protocol.TypeSessionState, msgs[1]["type"])
	assert.Equal(t, protocol.StatusPaused, msgs[1]["status"])

	assert.Equal(t, protocol.TypeParticipantUpdate, msgs[2]["type"])
	roster := msgs[2]["participants"].([]sim.ParticipantInfo)
	require.Len(t, roster, 1)
	assert.Equal(t, "mallory", roster[0].Name)
}

func TestHubRemovePrunesConnection(t *testing.T) {
	h := NewHub()
	c := NewConn()
	h.Add("alpha", c)
	h.Remove("alpha", c)

	h.Event("alpha", "attack", "desc", "p")
	// Removed connection gets nothing new; its channel is being closed.
	h.mu.Lock()
	_, present := h.conns["alpha"]
	h.mu.Unlock()
	assert.False(t, present)
}

func TestHubDropsFullConnections(t *testing.T) {
	h := NewHub()
	c := NewConn()
	h.Add("alpha", c)

	// Fill the buffer without draining; the next push prunes the conn.
	for i := 0; i < cap(c.OutChan); i++ {
		h.Event("alpha", "attack", "spam", "p")
	}
	h.Event("alpha", "attack", "overflow", "p")

	h.mu.Lock()
	_, present := h.conns["alpha"]
	h.mu.Unlock()
	assert.False(t, present, "unresponsive dashboards are pruned")
}
