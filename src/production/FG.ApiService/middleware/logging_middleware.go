package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Logger"
)

// RequestLogger logs one structured line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		event := log.Logger.Info()
		if ctx.Writer.Status() >= 500 {
			event = log.Logger.Error()
		}
		event.
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", ctx.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("request_id", GetRequestID(ctx)).
			Msg("Request handled")
	}
}
