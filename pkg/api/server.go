package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/provizor/provizor/pkg/api/handlers"
	"github.com/provizor/provizor/pkg/auth"
	"github.com/provizor/provizor/pkg/config"
	"github.com/provizor/provizor/pkg/database"
	"github.com/provizor/provizor/pkg/database/models"
	"github.com/provizor/provizor/pkg/database/repositories"
	"github.com/provizor/provizor/pkg/provision"
)

// Server represents the API server
type Server struct {
	config     *config.Config
	db         *database.DB
	authSvc    *auth.Service
	jwtManager *auth.JWTManager
	router     *gin.Engine
	httpServer *http.Server

	sessions    *handlers.SessionHandlers
	plans       *handlers.PlanHandlers
	vms         *handlers.VMHandlers
	clients     *handlers.ClientHandlers
	hypervisors *handlers.HypervisorHandlers
	users       *handlers.UserHandlers
}

// NewServer creates a new API server instance
func NewServer(cfg *config.Config, db *database.DB, authSvc *auth.Service, jwtManager *auth.JWTManager, orchestrator *provision.Orchestrator) *Server {
	planRepo := repositories.NewPlanRepository(db.DB)
	vmRepo := repositories.NewVMRepository(db.DB)
	clientRepo := repositories.NewClientRepository(db.DB)
	hypervisorRepo := repositories.NewHypervisorRepository(db.DB)
	userRepo := repositories.NewUserRepository(db.DB)

	server := &Server{
		config:      cfg,
		db:          db,
		authSvc:     authSvc,
		jwtManager:  jwtManager,
		sessions:    handlers.NewSessionHandlers(authSvc),
		plans:       handlers.NewPlanHandlers(planRepo),
		vms:         handlers.NewVMHandlers(vmRepo, orchestrator),
		clients:     handlers.NewClientHandlers(clientRepo),
		hypervisors: handlers.NewHypervisorHandlers(hypervisorRepo),
		users:       handlers.NewUserHandlers(userRepo, authSvc),
	}

	// Configure gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router = gin.New()

	// Global middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(s.corsMiddleware())
	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.errorHandlerMiddleware())

	// Health endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/ready", s.readinessHandler)

	api := s.router.Group("/api")

	// Public endpoints (no authentication required)
	api.POST("/login", s.sessions.Login)

	// Protected endpoints (authentication required)
	protected := api.Group("/")
	protected.Use(auth.JWTMiddleware(s.jwtManager))
	{
		protected.GET("/plans", s.plans.List)
		protected.GET("/plans/:id", s.plans.Get)

		protected.GET("/virtual-machines", s.vms.List)
		protected.GET("/virtual-machines/:id", s.vms.Get)
		protected.POST("/virtual-machines",
			auth.RequireRole(models.RoleAdmin, models.RoleOperator), s.vms.Create)
		protected.PUT("/virtual-machines/:id/status",
			auth.RequireRole(models.RoleAdmin, models.RoleOperator), s.vms.UpdateStatus)

		protected.GET("/clients", s.clients.List)
		protected.GET("/clients/:id", s.clients.Get)

		protected.GET("/hypervisors", s.hypervisors.List)
		protected.GET("/hypervisors/:id", s.hypervisors.Get)
	}

	// Admin endpoints
	admin := api.Group("/")
	admin.Use(auth.JWTMiddleware(s.jwtManager), auth.RequireRole(models.RoleAdmin))
	{
		admin.POST("/plans", s.plans.Create)
		admin.PUT("/plans/:id", s.plans.Update)
		admin.DELETE("/plans/:id", s.plans.Delete)

		admin.DELETE("/virtual-machines/:id", s.vms.Delete)

		admin.POST("/clients", s.clients.Create)
		admin.PUT("/clients/:id", s.clients.Update)
		admin.DELETE("/clients/:id", s.clients.Delete)

		admin.POST("/hypervisors", s.hypervisors.Create)
		admin.PUT("/hypervisors/:id", s.hypervisors.Update)
		admin.DELETE("/hypervisors/:id", s.hypervisors.Delete)

		admin.GET("/users", s.users.List)
		admin.GET("/users/:id", s.users.Get)
		admin.POST("/users", s.users.Create)
		admin.PUT("/users/:id", s.users.Update)
		admin.DELETE("/users/:id", s.users.Delete)
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	sqlDB, err := s.db.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	address := fmt.Sprintf(":%d", s.config.API.Port)
	log.Printf("Starting API server on %s", address)

	s.httpServer = &http.Server{
		Addr:         address,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.config.API.TLSCert != "" && s.config.API.TLSKey != "" {
		if _, err := os.Stat(s.config.API.TLSCert); err != nil {
			return fmt.Errorf("TLS certificate file error: %w", err)
		}
		if _, err := os.Stat(s.config.API.TLSKey); err != nil {
			return fmt.Errorf("TLS key file error: %w", err)
		}

		log.Println("Starting HTTPS server")
		return s.httpServer.ListenAndServeTLS(s.config.API.TLSCert, s.config.API.TLSKey)
	}

	log.Println("Starting HTTP server")
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Println("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}

// GetRouter returns the gin router (useful for testing)
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
