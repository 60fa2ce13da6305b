package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/govbiz/internal/api/handler"
	"github.com/timmy/govbiz/internal/api/middleware"
	"github.com/timmy/govbiz/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	searchService *service.SearchService,
	mode string,
) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	searchHandler := handler.NewSearchHandler(searchService)
	memeHandler := handler.NewMemeHandler(searchService)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Search
		v1.POST("/search", searchHandler.TextSearch)

		// Categories
		v1.GET("/categories", searchHandler.GetCategories)

		// Memes
		v1.GET("/memes", memeHandler.ListMemes)
		v1.GET("/memes/:id", memeHandler.GetMeme)

		// Stats
		v1.GET("/stats", searchHandler.GetStats)
	}

	return r
}
