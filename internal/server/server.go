package server

import (
	"time"

	"github.com/franzego/apptnotifier/internal/handlers"
	"github.com/franzego/apptnotifier/internal/metrics"
	"github.com/franzego/apptnotifier/internal/middleware"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter assembles the gin engine with access logging, panic recovery,
// CORS and correlation IDs in front of every route.
func NewRouter(log *zap.Logger, debug bool, notification *handlers.Notification) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
		middleware.CORS(),
		middleware.CorrelationID(log.Sugar()),
	)

	engine.POST("/send-emails", notification.SendEmails)
	engine.GET("/healthz", notification.Health)
	engine.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	return engine
}
