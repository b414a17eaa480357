package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Lakshith-P/ipc-debugging-tools/internal/coordinator"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/logging"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/monitoring"
)

// Server wraps the HTTP router and its dependencies.
type Server struct {
	router *gin.Engine
	coord  *coordinator.Coordinator
	log    *logging.Logger
}

// NewServer creates a server around an existing coordinator.
func NewServer(coord *coordinator.Coordinator, metrics *monitoring.Metrics, log *logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router: router,
		coord:  coord,
		log:    log,
	}

	router.GET("/", s.root)
	router.GET("/status", s.status)
	router.GET("/timeline", s.timeline)
	router.GET("/alert", s.alert)

	router.POST("/start", s.start)
	router.POST("/stop", s.stop)
	router.POST("/export", s.export)

	router.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
	router.GET("/stream", s.stream)

	return s
}

// Run starts the server on addr and blocks.
func (s *Server) Run(addr string) error {
	s.log.Info("starting status server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Close stops any running simulation.
func (s *Server) Close() error {
	s.coord.Stop()
	return nil
}
