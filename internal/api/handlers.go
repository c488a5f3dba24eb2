package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talktonic/internal/config"
	"talktonic/internal/dialogue"
	"talktonic/internal/format"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config, conv *dialogue.Conversation) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"subpath": cfg.Server.Subpath,
			},
			"llm": gin.H{
				"model": cfg.LLM.Model,
			},
			"search": gin.H{
				"provider":    cfg.Search.Provider,
				"max_results": cfg.Search.MaxResults,
			},
			"webpage": gin.H{
				"extractor": cfg.WebPage.Extractor,
				"max_chars": cfg.WebPage.MaxChars,
			},
			"triggers": conv.Router().Triggers(),
		})
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

// POST /classify
func ClassifyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req classifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		resp := gin.H{
			"type":   dialogue.Classify(req.Text),
			"is_url": dialogue.IsURL(req.Text),
			"is_csv": dialogue.IsCSV(req.Text),
		}
		if u, ok := dialogue.ExtractURL(req.Text); ok {
			resp["url"] = u
		}
		c.JSON(http.StatusOK, resp)
	}
}

type formatRequest struct {
	Data string      `json:"data"`
	Mode format.Mode `json:"mode" binding:"required"`
}

// POST /format
func FormatHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req formatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		out, err := format.Format(req.Data, req.Mode)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": format.Render(req.Data, req.Mode)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": out})
	}
}
