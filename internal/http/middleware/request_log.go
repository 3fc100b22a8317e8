package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nahuelRo/first-plug-api/internal/platform/ctxutil"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		fields = append(fields, ctxutil.GetTraceData(c.Request.Context()).LogFields()...)
		if td := ctxutil.GetTenantData(c.Request.Context()); td != nil && td.HolderID != "" {
			fields = append(fields, "holder_id", td.HolderID)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
