package api

import (
	"net/http"
	"path"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"talktonic/internal/auth"
	"talktonic/internal/config"
	"talktonic/internal/db"
	"talktonic/internal/dialogue"
)

// Deps are the services the HTTP layer talks to. Archive and Limiter may be nil.
type Deps struct {
	Conversation *dialogue.Conversation
	Archive      *db.Archive
	Limiter      *auth.RateLimiter
}

func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath

	origins := cfg.Server.AllowedOrigins
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	if subpath != "" && subpath != "/" {
		r.GET(subpath+"/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, path.Join(subpath, "health"))
		})
	}

	session := auth.SessionMiddleware(cfg)
	limit := func(c *gin.Context) { c.Next() }
	if deps.Limiter != nil {
		limit = deps.Limiter.Middleware()
	}

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg, deps.Conversation))

		group.POST("/sessions", limit, CreateSessionHandler(cfg, deps.Conversation))
		group.GET("/sessions/online", OnlineSessionsHandler(deps.Conversation))
		group.GET("/sessions/current/messages", session, ListMessagesHandler(deps.Conversation))
		group.POST("/sessions/current/messages", session, limit, SendMessageHandler(deps.Conversation))
		group.PUT("/sessions/current/draft", session, SaveDraftHandler(deps.Conversation))
		group.DELETE("/sessions/current", session, ClearSessionHandler(deps.Conversation))
		group.GET("/sessions/current/archive", session, ArchiveHistoryHandler(deps.Conversation, deps.Archive))

		group.POST("/classify", ClassifyHandler())
		group.POST("/format", limit, FormatHandler())
		group.GET("/stats/paths", PathStatsHandler(deps.Archive))

		group.GET("/ws/chat", session, WSChatHandler(deps.Conversation))
	}
	return r
}
