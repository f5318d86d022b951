// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cyberrange/internal/auth"
	"github.com/jason-s-yu/cyberrange/internal/middleware"
	"github.com/jason-s-yu/cyberrange/internal/protocol"
	"github.com/jason-s-yu/cyberrange/internal/sim"
)

// SimulationWSHandler is the participant WebSocket endpoint. Connections are
// authenticated on upgrade; the session itself is created lazily on the first
// connection for a lobby code. The participant is not registered until their
// join message arrives.
func SimulationWSHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := mux.Vars(r)["code"]
		remoteAddr := r.RemoteAddr

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"simulation"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "simulation" {
			c.Close(BadSubprotocolError, "client must speak the simulation subprotocol")
			return
		}

		token := auth.TokenFromRequest(r)
		if token == "" {
			c.Close(MissingAuthTokenError, "auth token required")
			return
		}
		if _, err := auth.AuthenticateJWT(token); err != nil {
			logger.Warnf("auth failed for lobby %s from %s: %v", code, remoteAddr, err)
			c.Close(InvalidAuthTokenError, "invalid auth token")
			return
		}

		session := s.Registry.GetOrCreate(code)
		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := readPump(ctx, cancel, c, session, logger, code)

		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, nil)
		if conn != nil {
			session.Leave(conn)
		}
	}
}

// readPump drains the participant socket until it closes. It owns the join
// handshake: the *sim.ParticipantConn is created when a valid join arrives and
// returned to the caller for cleanup.
func readPump(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, session *sim.Session, logger *logrus.Logger, code string) *sim.ParticipantConn {
	var conn *sim.ParticipantConn

	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("Lobby %s: WebSocket closed normally.", code)
			} else if strings.Contains(err.Error(), "context canceled") {
				// Connection torn down by our side.
			} else {
				logger.Warnf("Lobby %s: read error: %v (CloseStatus: %d)", code, err, closeStatus)
			}
			return conn
		}
		if typ != websocket.MessageText {
			logger.Warnf("Lobby %s: ignoring non-text message type %d", code, typ)
			continue
		}

		var packet map[string]interface{}
		if err := json.Unmarshal(msg, &packet); err != nil {
			logger.Warnf("Lobby %s: invalid json: %v", code, err)
			writeDirect(ctx, c, map[string]interface{}{
				"type":    protocol.TypeError,
				"message": "Invalid JSON format",
			})
			continue
		}

		msgType, _ := packet["type"].(string)
		switch protocol.Canonical(msgType) {
		case protocol.TypeJoin:
			if conn != nil {
				conn.WriteError("already joined")
				continue
			}
			name, _ := packet["name"].(string)
			roleStr, _ := packet["role"].(string)
			role, ok := protocol.ParseRole(roleStr)
			if name == "" || !ok {
				writeDirect(ctx, c, map[string]interface{}{
					"type":    protocol.TypeError,
					"message": "join requires a name and a valid role",
				})
				continue
			}
			candidate := sim.NewParticipantConn(name, role)
			candidate.Cancel = cancel
			if err := session.Join(candidate); err != nil {
				writeDirect(ctx, c, map[string]interface{}{
					"type":    protocol.TypeError,
					"message": err.Error(),
				})
				continue
			}
			conn = candidate
			go writePump(ctx, c, conn.OutChan, logger, conn.Name)

		default:
			if conn == nil {
				writeDirect(ctx, c, map[string]interface{}{
					"type":    protocol.TypeError,
					"message": "join the session before sending commands",
				})
				continue
			}
			dispatchParticipantMessage(session, conn, protocol.Canonical(msgType), packet)
		}
	}
}

// dispatchParticipantMessage routes one decoded packet to the session method
// implementing it. Session methods do their own locking; each call is atomic.
func dispatchParticipantMessage(session *sim.Session, conn *sim.ParticipantConn, msgType string, packet map[string]interface{}) {
	switch msgType {
	case protocol.TypeAttackCommand:
		command, _ := packet["command"].(string)
		session.ExecuteCommand(conn, command)
	case protocol.TypeDefenseClassify:
		session.Classify(conn, classifyRequestFromPacket(packet))
	case protocol.TypeDefenseTriage:
		label, _ := packet["label"].(string)
		if label == "" {
			label, _ = packet["mode"].(string)
		}
		session.Triage(conn, label)
	case protocol.TypeRequestHints:
		session.RequestHints(conn)
	case protocol.TypeRequestObjectives:
		session.RequestObjectives(conn)
	case protocol.TypeRequestScoreboard:
		session.Scoreboard(conn)
	case protocol.TypeChatMessage:
		msg, _ := packet["message"].(string)
		session.Chat(conn.Name, msg)
	case protocol.TypeSimulationEnd:
		session.End(conn.Name)
	case protocol.TypeDetectionConfig:
		session.NoteDetectionConfig(conn.Name)
		conn.Write(map[string]interface{}{"type": protocol.TypeDetectionConfigAck})
	default:
		// Unknown message types are ignored rather than answered; forward
		// compatibility with newer frontends.
	}
}

// classifyRequestFromPacket tolerates both snake_case and camelCase field
// spellings used by different frontend builds.
func classifyRequestFromPacket(packet map[string]interface{}) sim.ClassifyRequest {
	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := packet[k].(string); ok && v != "" {
				return v
			}
		}
		return ""
	}
	confidence, _ := packet["confidence"].(float64)
	return sim.ClassifyRequest{
		Classification:   str("classification", "category"),
		Objective:        str("objective", "objective_id"),
		Confidence:       confidence,
		DetectionProfile: str("detection_profile", "detectionProfile"),
		AttackID:         str("attack_id", "attackId"),
	}
}

// writePump drains the participant's OutChan onto the socket, pinging
// periodically so half-dead connections are detected.
func writePump(ctx context.Context, c *websocket.Conn, out chan map[string]interface{}, logger *logrus.Logger, name string) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer c.Close(websocket.StatusGoingAway, "write pump stopping")

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-out:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing msg for %s: %v", name, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for %s: %v", name, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for %s: %v", name, err)
				return
			}
		}
	}
}

// writeDirect marshals and writes a message on the raw socket, for errors sent
// before a participant handle exists.
func writeDirect(ctx context.Context, c *websocket.Conn, msg map[string]interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = c.Write(writeCtx, websocket.MessageText, data)
}
