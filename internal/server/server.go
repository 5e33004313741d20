package server

import (
	"context"
	"net/http"
	"time"

	"fitcoach/internal/auth"
	"fitcoach/internal/availability"
	"fitcoach/internal/config"
	"fitcoach/internal/membership"
	"fitcoach/internal/timetable"
	"fitcoach/internal/visit"

	"github.com/gin-gonic/gin"
)

// Handlers are the domain endpoints mounted behind authentication.
type Handlers struct {
	Availability *availability.Handler
	Sessions     *timetable.Handler
	Memberships  *membership.Handler
	Visits       *visit.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

func New(cfg *config.Config, h Handlers, db Pinger) *Server {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
		RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	router.GET("/health", Health)
	router.GET("/ready", Ready(db))
	router.GET("/metrics", Metrics())

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/coaches/:coachID/availability", h.Availability.ListAvailability)
		protected.POST("/coaches/:coachID/availability",
			auth.RequireRole(auth.RoleAdmin, auth.RoleCoach), h.Availability.AddAvailability)
		protected.POST("/coaches/:coachID/availability/merge",
			auth.RequireRole(auth.RoleAdmin), h.Availability.MergeAvailability)

		protected.POST("/sessions", h.Sessions.BookSession)
		protected.GET("/sessions/:sessionID", h.Sessions.GetSession)
		protected.DELETE("/sessions/:sessionID", h.Sessions.CancelSession)
		protected.GET("/timetable", h.Sessions.GetWeeklySessions)

		protected.GET("/clients/:clientID/membership", h.Memberships.GetMembership)
		protected.POST("/clients/:clientID/check-in", h.Visits.CheckIn)
		protected.GET("/clients/:clientID/visits/count", h.Visits.CountVisits)
		protected.GET("/visits", h.Visits.ListVisits)
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. After Shutdown it returns http.ErrServerClosed.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
