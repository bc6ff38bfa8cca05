package server

import (
	"net/http"

	"remote-viewing/internal/config"
	"remote-viewing/internal/viewing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	manager  *viewing.Manager
	cfg      config.Config
	sessions *sessionStore
	gatherer prometheus.Gatherer
}

type Options struct {
	Manager *viewing.Manager
	// Sessions stores the rv_session cookie data. Nil keeps it in memory.
	Sessions SessionBackend
	// Gatherer backs /metrics. Nil uses the default prometheus registry.
	Gatherer prometheus.Gatherer
}

func New(cfg config.Config, opts Options) *Server {
	registerValidators()
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		manager:  opts.Manager,
		cfg:      cfg,
		sessions: newSessionStore(opts.Sessions, cfg.SessionLifetime, cfg.CookieSecure),
		gatherer: gatherer,
	}
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/", s.handleHome)
	router.POST("/start_session", s.handleStartSession)
	router.POST("/submit_guess", s.handleSubmitGuess)
	router.GET("/reveal_image", s.handleRevealImage)
	router.POST("/rate_image", s.handleRateImage)
	router.GET("/view_results", s.handleViewResults)
	router.GET("/view_image/:id", s.handleViewImage)
	router.POST("/update_rating/:id", s.handleUpdateRating)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}
