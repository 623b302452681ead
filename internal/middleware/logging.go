package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chefhut/storefront/internal/eventlog"
	"github.com/chefhut/storefront/internal/telemetry"
)

const HeaderTraceID = "X-Trace-ID"

const keyTraceID = "traceID"

func GetTraceID(c *gin.Context) string { return c.GetString(keyTraceID) }

// RequestLog logs every request and ships the same entry to the event log.
// The trace id comes from X-Trace-ID or is generated, and is echoed back.
func RequestLog(log *slog.Logger, events *eventlog.Writer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(keyTraceID, traceID)
		c.Header(HeaderTraceID, traceID)

		c.Next()

		user := "anonymous"
		if sess := GetSession(c); sess != nil {
			user = sess.Email
		}
		status := c.Writer.Status()
		duration := time.Since(start)
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"trace_id", traceID,
			"user", user,
			"ip", c.ClientIP(),
		)

		if err := events.Write(c.Request.Context(), eventlog.Entry{
			Level:   "info",
			Module:  "http",
			Message: "request completed",
			TraceID: traceID,
			Extra: map[string]string{
				"method":      c.Request.Method,
				"path":        c.Request.URL.Path,
				"status":      strconv.Itoa(status),
				"duration_ms": strconv.FormatInt(duration.Milliseconds(), 10),
				"user":        user,
				"ip":          c.ClientIP(),
				"user_agent":  c.Request.UserAgent(),
			},
		}); err != nil {
			log.Warn("ship request log", "error", err)
		}
	}
}

// Metrics records request count and latency per route template.
func Metrics(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
