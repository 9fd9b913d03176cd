package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/franzego/apptnotifier/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"
	CorrelationIDKey    = "correlationID"
)

// CorrelationID echoes or generates a correlation ID and attaches a
// request-scoped logger carrying it.
func CorrelationID(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Set(CorrelationIDKey, correlationID)
		c.Header(CorrelationIDHeader, correlationID)
		c.Set(logging.ReqLoggerKey, log.With(
			"correlationID", correlationID,
			"method", c.Request.Method,
			"path", c.FullPath(),
		))
		c.Next()
	}
}

const preflightMaxAge = 12 * time.Hour

// CORS lets any origin call the API with credentials, using any method and
// request header. Browsers ignore "*" on credentialed requests, so the origin,
// method and headers of a preflight are mirrored back instead. Actual requests
// go through gin-contrib/cors, which echoes the origin the same way.
func CORS() gin.HandlerFunc {
	actual := cors.New(cors.Config{
		AllowOriginFunc: func(string) bool { return true },
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		ExposeHeaders:    []string{CorrelationIDHeader},
		AllowCredentials: true,
		MaxAge:           preflightMaxAge,
	})
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		method := c.GetHeader("Access-Control-Request-Method")
		if c.Request.Method != http.MethodOptions || origin == "" || method == "" {
			actual(c)
			return
		}

		h := c.Writer.Header()
		h.Add("Vary", "Origin")
		h.Add("Vary", "Access-Control-Request-Method")
		h.Add("Vary", "Access-Control-Request-Headers")
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Methods", method)
		if headers := c.GetHeader("Access-Control-Request-Headers"); headers != "" {
			h.Set("Access-Control-Allow-Headers", headers)
		}
		h.Set("Access-Control-Max-Age", strconv.Itoa(int(preflightMaxAge/time.Second)))
		c.AbortWithStatus(http.StatusNoContent)
	}
}
