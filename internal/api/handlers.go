package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/database"
)

// Version is reported by the health endpoint
var Version = "dev"

// HealthCheck reports whether the database, and redis when configured,
// answer within a short timeout
func HealthCheck(db *gorm.DB, redisClient *redis.Client, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok"}
		status := http.StatusOK

		if err := database.HealthCheck(ctx, db); err != nil {
			logger.WarnContext(ctx, "database health check failed", "error", err)
			checks["database"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				// Rate limiting fails open, so redis being down degrades
				// nothing a client would notice.
				logger.WarnContext(ctx, "redis health check failed", "error", err)
				checks["redis"] = "unavailable"
			}
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":  state,
			"version": Version,
			"checks":  checks,
		})
	}
}
