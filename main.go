package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vitalearn/backend/audit"
	"github.com/vitalearn/backend/logging"
	"github.com/vitalearn/backend/middleware"
)

var (
	pageAuditor *audit.Auditor
	rateLimiter *middleware.RateLimiter
)

func loadEnv() {
	// Try to load .env.development first (for local development)
	if err := godotenv.Load(".env.development"); err != nil {
		// If .env.development doesn't exist, try regular .env
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

func setupGinMode() {
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		// Default to release mode if not specified
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}

func main() {
	loadEnv()
	setupGinMode()

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	var err error
	pageAuditor, err = audit.New(dataDir)
	if err != nil {
		log.Fatal("Failed to initialize auditor:", err)
	}
	defer pageAuditor.Shutdown()

	rateLimiter = middleware.NewRateLimiter(2, 5) // 2 requests per second, bucket size of 5

	// Request statistics are an explicitly constructed collector, passed to
	// every consumer by reference.
	requestStats := logging.NewStatistics("statistics.json")

	r := gin.Default()

	r.Use(middleware.ErrorHandler())
	r.Use(rateLimiter.RateLimit())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.Use(middleware.StatsMiddleware(requestStats))

	// API routes
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		// Accessibility audit endpoints
		api.POST("/audit", auditURL)
		api.POST("/audit/html", auditHTML)

		// Statistics endpoint
		api.GET("/statistics", func(c *gin.Context) {
			c.JSON(http.StatusOK, requestStats.GetStatistics())
		})
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8082" // Default port
	}

	log.Printf("Server starting on http://localhost:%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// auditURL fetches a page and returns its combined accessibility audit.
func auditURL(c *gin.Context) {
	log.Printf("Audit request received from: %s\n", c.ClientIP())
	var request struct {
		URL string `json:"url" binding:"required,url"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid URL provided",
		})
		return
	}

	result, err := pageAuditor.Audit(request.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to audit URL: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// auditHTML audits raw markup submitted directly, without a fetch. The
// authoring preview uses this to check content before publishing.
func auditHTML(c *gin.Context) {
	var request struct {
		HTML string `json:"html" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No HTML provided",
		})
		return
	}

	result, err := pageAuditor.AuditHTML(request.HTML)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to audit HTML: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
