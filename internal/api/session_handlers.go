package api

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"talktonic/internal/apperr"
	"talktonic/internal/auth"
	"talktonic/internal/chat"
	"talktonic/internal/config"
	"talktonic/internal/db"
	"talktonic/internal/dialogue"
)

// turnResponse is the JSON shape of one routed turn, shared with the WebSocket handler.
type turnResponse struct {
	User      chat.Message  `json:"user"`
	Reply     chat.Message  `json:"reply"`
	Path      dialogue.Path `json:"path"`
	Input     string        `json:"input_type"`
	ErrorKind string        `json:"error_kind,omitempty"`
}

func newTurnResponse(t dialogue.Turn) turnResponse {
	return turnResponse{
		User:      t.User,
		Reply:     t.Outcome.Reply,
		Path:      t.Outcome.Path,
		Input:     string(t.Outcome.Input),
		ErrorKind: string(apperr.KindOf(t.Outcome.Err)),
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(auth.SessionIDKey)
}

// storeError maps store failures to a status; the transcript is untouched either way.
func storeError(c *gin.Context, err error) {
	if errors.Is(err, chat.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	log.Printf("[API] session store error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Session store unavailable"})
}

// POST /sessions
func CreateSessionHandler(cfg *config.Config, conv *dialogue.Conversation) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := conv.Create(c.Request.Context())
		if err != nil {
			storeError(c, err)
			return
		}
		ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
		token, err := auth.GenerateJWT(cfg.Server.JWTSecret, s.ID, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": s.ID, "token": token})
	}
}

// GET /sessions/current/messages
func ListMessagesHandler(conv *dialogue.Conversation) gin.HandlerFunc {
	return func(c *gin.Context) {
		msgs, err := conv.Transcript(c.Request.Context(), sessionID(c))
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, msgs)
	}
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// POST /sessions/current/messages
func SendMessageHandler(conv *dialogue.Conversation) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
			return
		}
		turn, err := conv.Handle(c.Request.Context(), sessionID(c), req.Content)
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newTurnResponse(turn))
	}
}

// PUT /sessions/current/draft
func SaveDraftHandler(conv *dialogue.Conversation) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := conv.SaveDraft(c.Request.Context(), sessionID(c), req.Content); err != nil {
			storeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DELETE /sessions/current
func ClearSessionHandler(conv *dialogue.Conversation) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := conv.Clear(c.Request.Context(), sessionID(c))
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": s.ID, "epoch": s.Epoch, "messages": s.Messages()})
	}
}

// GET /sessions/online
func OnlineSessionsHandler(conv *dialogue.Conversation) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := conv.Online(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count sessions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"online": n})
	}
}

// GET /sessions/current/archive
func ArchiveHistoryHandler(conv *dialogue.Conversation, archive *db.Archive) gin.HandlerFunc {
	return func(c *gin.Context) {
		if archive == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Archive disabled"})
			return
		}
		s, err := conv.Session(c.Request.Context(), sessionID(c))
		if err != nil {
			storeError(c, err)
			return
		}
		rows, err := archive.History(c.Request.Context(), s.ID, s.Epoch)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read archive"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// GET /stats/paths
func PathStatsHandler(archive *db.Archive) gin.HandlerFunc {
	return func(c *gin.Context) {
		if archive == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Archive disabled"})
			return
		}
		counts, err := archive.CountByPath(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read archive"})
			return
		}
		c.JSON(http.StatusOK, counts)
	}
}
