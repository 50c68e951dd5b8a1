package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kartikey004/resume-parser-ai/internal/matches"
	"github.com/kartikey004/resume-parser-ai/internal/resumes"
	"github.com/kartikey004/resume-parser-ai/internal/shared/config"
	"github.com/kartikey004/resume-parser-ai/internal/shared/metrics"
	"github.com/kartikey004/resume-parser-ai/internal/shared/server/middleware"
	"github.com/kartikey004/resume-parser-ai/internal/shared/server/respond"
)

// RouterDeps carries the handlers and shared state the router needs.
type RouterDeps struct {
	Config         config.Config
	DB             *sql.DB
	ResumesHandler *resumes.Handler
	MatchesHandler *matches.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(deps.DB))
	if deps.ResumesHandler != nil {
		deps.ResumesHandler.RegisterRoutes(api)
	}
	if deps.MatchesHandler != nil {
		deps.MatchesHandler.RegisterRoutes(api)
	}

	return r
}

func healthHandler(sqlDB *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "memory"
		if sqlDB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				respond.JSON(c, http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
				return
			}
			dbStatus = "connected"
		}
		respond.JSON(c, http.StatusOK, gin.H{"status": "ok", "database": dbStatus})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
