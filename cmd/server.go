package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-intake/internal/api/router"
	"campus-intake/internal/config"
	"campus-intake/internal/infrastructure/database"
	"campus-intake/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	port string
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the intake HTTP server",
	Long: `Start the intake HTTP server with the full booking system:
- Availability queries and slot reservation
- Guided enrollment wizard sessions
- Front-desk search and check-in
- Administrative schedule and settings management
- Async notification delivery with queue workers`,
	Run: func(cmd *cobra.Command, args []string) {
		startServer()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port for the server to listen on")
}

func startServer() {
	cfg := config.Get()
	if port != "8080" {
		cfg.Server.Port = port
	}

	dbConfig := database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.Username,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	}

	db, err := database.NewConnection(dbConfig)
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.RunSQLMigrations(db); err != nil {
		logger.Error("Failed to run database migrations: %v", err)
		os.Exit(1)
	}

	if err := database.HealthCheck(db); err != nil {
		logger.Error("Database health check failed: %v", err)
		os.Exit(1)
	}

	components, err := router.NewIntakeRouter(db)
	if err != nil {
		logger.Error("Failed to build router: %v", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        components.Router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Info("Starting Campus Intake Server on port %s", cfg.Server.Port)
		logger.Info("Available endpoints:")
		logger.Info("  GET  /api/v1/levels - Level directory")
		logger.Info("  GET  /api/v1/availability/dates - Dates with open slots")
		logger.Info("  GET  /api/v1/availability/slots - Slots for one day")
		logger.Info("  POST /api/v1/reserve - Reserve an appointment")
		logger.Info("  POST /api/v1/wizard - Start an enrollment session")
		logger.Info("  GET  /api/v1/admin/students - List registrations")
		logger.Info("  POST /api/v1/admin/students/{id}/checkin - Check a student in")
		logger.Info("  GET  /api/v1/admin/dashboard - Dashboard aggregates")
		logger.Info("  GET  /health - Health check")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down Campus Intake Server...")
	logger.Info("Stopping queue workers...")
	components.QueueService.StopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	if err := components.CacheService.Close(); err != nil {
		logger.Warn("Failed to close cache connection: %v", err)
	}

	logger.Info("Campus Intake Server exited")
}
