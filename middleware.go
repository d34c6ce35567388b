package main

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// requestTiming logs every request with its status and how long it took.
func requestTiming(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.Bool("htmx", c.GetHeader("HX-Request") == "true"),
		)
	}
}
