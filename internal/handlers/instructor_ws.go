// internal/handlers/instructor_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cyberrange/internal/auth"
	"github.com/jason-s-yu/cyberrange/internal/instructor"
	"github.com/jason-s-yu/cyberrange/internal/protocol"
	"github.com/jason-s-yu/cyberrange/internal/sim"
)

// InstructorWSHandler is the dashboard WebSocket endpoint. Unlike the
// participant channel it never creates sessions: an instructor watching a
// lobby that has no session is told so and disconnected.
func InstructorWSHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := mux.Vars(r)["code"]

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"instructor"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "instructor" {
			c.Close(BadSubprotocolError, "client must speak the instructor subprotocol")
			return
		}

		token := auth.TokenFromRequest(r)
		if token == "" {
			c.Close(MissingAuthTokenError, "auth token required")
			return
		}
		claims, err := auth.AuthenticateJWT(token)
		if err != nil {
			logger.Warnf("instructor auth failed for lobby %s: %v", code, err)
			c.Close(InvalidAuthTokenError, "invalid auth token")
			return
		}
		if !strings.EqualFold(claims.Role, string(protocol.RoleInstructor)) {
			c.Close(InvalidAuthTokenError, "instructor role required")
			return
		}

		session, ok := s.Registry.Get(code)
		if !ok {
			writeDirect(r.Context(), c, map[string]interface{}{
				"type":    protocol.TypeError,
				"message": "no active session for lobby " + code,
			})
			c.Close(UnknownLobbyError, "unknown lobby")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := instructor.NewConn()
		conn.Cancel = cancel
		s.Hub.Add(code, conn)
		defer s.Hub.Remove(code, conn)

		// Seed the dashboard with the full current state before live events.
		conn.OutChan <- map[string]interface{}{
			"type":  protocol.TypeSessionState,
			"state": session.StateSnapshot(),
		}

		logger.Infof("Instructor %s connected to lobby %s", claims.Subject, code)
		go writePump(ctx, c, conn.OutChan, logger, claims.Subject)
		instructorReadPump(ctx, c, session, claims, logger, code)
	}
}

// instructorReadPump handles control messages from a dashboard until the
// socket closes.
func instructorReadPump(ctx context.Context, c *websocket.Conn, session *sim.Session, claims auth.Claims, logger *logrus.Logger, code string) {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus != websocket.StatusNormalClosure && closeStatus != websocket.StatusGoingAway &&
				!strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("Instructor channel %s: read error: %v", code, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var packet map[string]interface{}
		if err := json.Unmarshal(msg, &packet); err != nil {
			writeDirect(ctx, c, map[string]interface{}{
				"type":    protocol.TypeError,
				"message": "Invalid JSON format",
			})
			continue
		}

		msgType, _ := packet["type"].(string)
		if msgType != protocol.TypeInstructorControl {
			writeDirect(ctx, c, map[string]interface{}{
				"type":    protocol.TypeError,
				"message": "unknown message type: " + msgType,
			})
			continue
		}

		action, _ := packet["action"].(string)
		switch action {
		case "pause":
			session.Pause()
		case "resume":
			session.Resume()
		case "end":
			session.End(claims.Subject)
		case "broadcast":
			message, _ := packet["message"].(string)
			session.InstructorBroadcast(message)
		case "chat":
			message, _ := packet["message"].(string)
			session.Chat(claims.Subject, message)
		case "set_difficulty":
			difficulty, _ := packet["difficulty"].(string)
			if err := session.SetDifficulty(difficulty); err != nil {
				writeDirect(ctx, c, map[string]interface{}{
					"type":    protocol.TypeError,
					"message": err.Error(),
				})
			}
		default:
			writeDirect(ctx, c, map[string]interface{}{
				"type":    protocol.TypeError,
				"message": "unknown control action: " + action,
			})
		}
	}
}
