package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vitalearn/backend/logging"
)

// StatsMiddleware tracks visitors and audit request latency on the shared
// statistics collector, which is passed in explicitly rather than reached
// through package state.
func StatsMiddleware(stats *logging.Statistics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		stats.TrackVisitor(c.ClientIP())

		c.Next()

		// Only audit endpoints count toward latency and URL popularity.
		if strings.HasPrefix(c.Request.URL.Path, "/api/audit") && c.Request.Method == "POST" {
			latency := float64(time.Since(start).Milliseconds())
			stats.TrackAudit(c.Request.URL.String(), latency, c.Writer.Status() >= 400)
		}

		// Periodically save statistics
		if stats.GetStatistics()["totalRequests"].(int)%100 == 0 {
			go stats.Save()
		}
	}
}
