// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the simulation and instructor handlers.
// These provide more specific reasons for closure than standard codes. The
// 44xx range mirrors the HTTP status the client would have seen on a REST call.
const (
	BadSubprotocolError   websocket.StatusCode = 3000 // Client connected with an unsupported subprotocol.
	MissingAuthTokenError websocket.StatusCode = 4401 // No auth token supplied on the upgrade request.
	InvalidAuthTokenError websocket.StatusCode = 4403 // Provided auth token was invalid, expired, or lacked the required role.
	UnknownLobbyError     websocket.StatusCode = 4404 // Target lobby code does not have an active session.
)
