package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"

	"github.com/librarian/librarian-backend/internal/services"
)

// wsError is one error frame on the chat socket.
type wsError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ChatSocket handles the /ws/chat websocket: each inbound frame is one chat
// request, each outbound frame the completed turn. The connection survives
// per-message failures; only a read or write error closes it.
func ChatSocket(svc *services.Services) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		for {
			var req services.ChatRequest
			if err := c.ReadJSON(&req); err != nil {
				// Client disconnected or sent garbage framing.
				return
			}

			if req.SessionID == "" || req.Message == "" {
				if err := c.WriteJSON(wsError{Type: "error", Error: "session_id and message are required"}); err != nil {
					return
				}
				continue
			}

			resp, err := svc.Chat.Send(context.Background(), req)
			if err != nil {
				if writeErr := c.WriteJSON(wsError{Type: "error", Error: err.Error()}); writeErr != nil {
					return
				}
				continue
			}

			if err := c.WriteJSON(resp); err != nil {
				return
			}
		}
	}
}
