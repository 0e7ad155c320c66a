package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"review-balancer/internal/allocation"
	"review-balancer/internal/app/middleware"
	"review-balancer/internal/config"
	"review-balancer/internal/db"
	"review-balancer/internal/handler"
	"review-balancer/internal/logger"
	"review-balancer/internal/repository"
	"review-balancer/internal/service/application"
	"review-balancer/internal/service/planner"
	"review-balancer/internal/service/rebalance"
	"review-balancer/internal/service/report"
	"review-balancer/internal/service/reviewer"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App is the main application structure
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	server *http.Server
}

// NewApp creates and configures the application
func NewApp(cfg *config.Config) (*App, error) {
	// Initialize logger
	log := logger.NewLogger("review-balancer", cfg.Logger.Level, cfg.Logger.Encoding, cfg.Logger.Development)

	// Create DB connection pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL())
	if err != nil {
		log.Error("Failed to parse DB config", zap.Error(err))
		return nil, err
	}

	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		log.Error("Failed to ping database", zap.Error(err))
		return nil, err
	}

	log.Info("Successfully connected to database")

	// Initialize context manager (transactor)
	ctxManager := db.NewContextManager(pool, log)

	// Initialize repositories
	reviewerRepo := repository.NewReviewerRepository(ctxManager)
	applicationRepo := repository.NewApplicationRepository(ctxManager)
	assignmentRepo := repository.NewAssignmentRepository(ctxManager)
	conflictRepo := repository.NewConflictRepository(ctxManager)

	// Initialize allocation engine
	allocator := allocation.NewAllocator(cfg.Allocation, log)
	rebalancer := allocation.NewRebalancer(cfg.Allocation, log)

	// Initialize services
	plannerService := planner.NewService(reviewerRepo, applicationRepo, assignmentRepo, conflictRepo, ctxManager, allocator, log)
	rebalanceService := rebalance.NewService(reviewerRepo, applicationRepo, assignmentRepo, conflictRepo, ctxManager, rebalancer, cfg.Allocation.MaxMoves, log)
	reviewerService := reviewer.NewService(reviewerRepo, assignmentRepo)
	applicationService := application.NewService(applicationRepo, reviewerRepo, assignmentRepo, conflictRepo, ctxManager)
	reportService := report.NewService(reviewerRepo, applicationRepo, assignmentRepo)

	// Initialize handlers
	reviewerHandler := handler.NewReviewerHandler(reviewerService, log)
	applicationHandler := handler.NewApplicationHandler(applicationService, log)
	planHandler := handler.NewPlanHandler(plannerService, rebalanceService, log)
	reportHandler := handler.NewReportHandler(reportService, cfg.Reports.StaleDays, cfg.Reports.ThroughputDays, log)
	healthHandler := handler.NewHealthHandler()

	// Setup HTTP router
	mux := http.NewServeMux()

	// Reviewer routes
	mux.HandleFunc("POST /reviewers/add", reviewerHandler.AddReviewer)
	mux.HandleFunc("POST /reviewers/setActive", reviewerHandler.SetActive)
	mux.HandleFunc("GET /status", reviewerHandler.Status)

	// Application routes
	mux.HandleFunc("POST /applications/submit", applicationHandler.Submit)
	mux.HandleFunc("GET /queue", applicationHandler.Queue)
	mux.HandleFunc("POST /conflicts/add", applicationHandler.AddConflict)
	mux.HandleFunc("POST /assignments/complete", applicationHandler.CompleteReview)

	// Planning routes
	mux.HandleFunc("POST /plan/run", planHandler.RunPlan)
	mux.HandleFunc("POST /rebalance/run", planHandler.RunRebalance)

	// Report routes
	mux.HandleFunc("GET /reports/backlog", reportHandler.Backlog)
	mux.HandleFunc("GET /reports/coverage", reportHandler.Coverage)
	mux.HandleFunc("GET /reports/throughput", reportHandler.Throughput)

	// Health route
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Metrics route
	mux.Handle("GET /metrics", promhttp.Handler())

	// Apply middleware chain: Recovery → Logging
	// Note: Error handling is done within handlers via middleware.WriteErrorResponse
	var h http.Handler = mux
	h = middleware.Logging(log)(h)
	h = middleware.Recovery(log)(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:    cfg,
		logger: log,
		pool:   pool,
		server: server,
	}, nil
}

// Run starts the application
func (a *App) Run() error {
	// Start HTTP server in goroutine
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	a.logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	// Close database pool
	a.pool.Close()
	a.logger.Info("Database connection pool closed")

	a.logger.Info("Server exited gracefully")
	return nil
}
