package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/provizor/provizor/pkg/api"
	"github.com/provizor/provizor/pkg/auth"
	"github.com/provizor/provizor/pkg/config"
	"github.com/provizor/provizor/pkg/database"
	"github.com/provizor/provizor/pkg/database/repositories"
	"github.com/provizor/provizor/pkg/hypervisor"
	"github.com/provizor/provizor/pkg/provision"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection with retry
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnectionWithRetry(ctx, cfg, database.RetryConfigFromConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run database migrations
	if err := db.AutoMigrate(); err != nil {
		db.Close()
		log.Fatalf("Failed to migrate database: %v", err)
	}
	defer db.Close()

	// Populate reference data on first start
	if err := db.Seed(cfg); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db.DB)
	vmRepo := repositories.NewVMRepository(db.DB)
	planRepo := repositories.NewPlanRepository(db.DB)
	clientRepo := repositories.NewClientRepository(db.DB)

	// Initialize authentication services
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	authSvc := auth.NewService(userRepo, jwtManager)

	// Initialize the provisioning pipeline
	registry := hypervisor.NewRegistry(hypervisor.Simulation{
		Latency:     cfg.Provision.SimulatedLatency,
		SuccessRate: cfg.Provision.SuccessRate,
	})
	orchestrator := provision.NewOrchestrator(vmRepo, planRepo, clientRepo, registry, cfg.Provision.DispatchTimeout)

	// Initialize API server
	server := api.NewServer(cfg, db, authSvc, jwtManager, orchestrator)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	// Give the server 30 seconds to finish current requests
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
