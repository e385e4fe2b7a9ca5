package api

import (
	"github.com/gin-gonic/gin"

	"pathfinder/internal/api/middleware"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/chat", handler.Chat)
		apiGroup.POST("/chat/stream", handler.ChatStream)
		apiGroup.POST("/career-quiz", handler.Quiz)
		apiGroup.POST("/analyze-cv-rag", handler.AnalyzeCV)
		apiGroup.POST("/upload-cv", handler.UploadCV)
		apiGroup.GET("/search", handler.Search)
		apiGroup.POST("/speech-to-text", handler.SpeechToText)
	}

	// Knowledge-base generation requires the admin API key
	kbGroup := r.Group("/api/kb")
	kbGroup.Use(middleware.Auth(cfg.APIKey))
	kbGroup.POST("/generate", handler.GenerateKB)

	return r
}
