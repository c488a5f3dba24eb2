package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"talktonic/internal/chat"
	"talktonic/internal/dialogue"
)

const wsMaxMessageBytes = 64 << 10

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws/chat?token=...
// Each text frame is one turn; every turn gets exactly one JSON frame back.
func WSChatHandler(conv *dialogue.Conversation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := sessionID(c)
		if _, err := conv.Session(c.Request.Context(), id); err != nil {
			storeError(c, err)
			return
		}

		conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("WebSocket upgrade failed:", err)
			return
		}
		defer conn.Close()
		conn.SetReadLimit(wsMaxMessageBytes)

		ctx := c.Request.Context()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("[WS] session %s read error: %v", id, err)
				}
				return
			}
			if mt != websocket.TextMessage {
				conn.WriteJSON(gin.H{"error": "text frames only"})
				continue
			}
			content := string(msg)
			if strings.TrimSpace(content) == "" {
				conn.WriteJSON(gin.H{"error": "missing content"})
				continue
			}

			turn, err := conv.Handle(ctx, id, content)
			if err != nil {
				if errors.Is(err, chat.ErrSessionNotFound) {
					conn.WriteJSON(gin.H{"error": "Session not found"})
					return
				}
				log.Printf("[WS] session %s turn failed: %v", id, err)
				conn.WriteJSON(gin.H{"error": "Session store unavailable"})
				continue
			}
			if err := conn.WriteJSON(newTurnResponse(turn)); err != nil {
				log.Printf("[WS] session %s write failed: %v", id, err)
				return
			}
		}
	}
}
