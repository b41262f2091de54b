// internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"calorie-log/internal/logger"
	"calorie-log/internal/storage"
)

type Config struct {
	Host    string
	Port    int
	DataDir string
	SiteDir string
	Mode    string
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	store      *storage.Store
	log        *logger.Logger
	config     *Config
}

func NewServer(cfg *Config, log *logger.Logger) (*Server, error) {
	store, err := storage.NewStore(cfg.DataDir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	switch strings.ToLower(cfg.Mode) {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	s := &Server{
		router: router,
		store:  store,
		log:    log,
		config: cfg,
	}
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: router,
	}

	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.SetHTMLTemplate(logPage)

	// Dashboard + paste form
	s.router.GET("/", s.handleIndex)
	s.router.GET("/app.js", s.handleAppJS)
	s.router.GET("/log", s.handleLogPage)
	s.router.POST("/save", s.handleSave)

	// Static fallback for the dashboard assets and the raw feed
	s.router.GET("/site/*name", s.handleSite)
	s.router.GET("/data/*name", s.handleData)

	// JSON API
	api := s.router.Group("/api")
	{
		api.GET("/entries", s.handleAPIList)
		api.GET("/entries/:date", s.handleAPIGet)
		api.POST("/entries", s.handleAPICreate)
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.log.Info("starting calorie log server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}
