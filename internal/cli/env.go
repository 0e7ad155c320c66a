package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"review-balancer/internal/allocation"
	"review-balancer/internal/config"
	"review-balancer/internal/db"
	"review-balancer/internal/logger"
	"review-balancer/internal/repository"
	"review-balancer/internal/service/application"
	"review-balancer/internal/service/planner"
	"review-balancer/internal/service/rebalance"
	reportsvc "review-balancer/internal/service/report"
	"review-balancer/internal/service/reviewer"
)

// env holds the wired services a one-shot command works with.
type env struct {
	cfg  *config.Config
	log  *zap.Logger
	pool *pgxpool.Pool
	cm   *db.ContextManager

	reviewers    *reviewer.Service
	applications *application.Service
	planner      *planner.Service
	rebalancer   *rebalance.Service
	reports      *reportsvc.Service
}

func newEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewLogger("review-balancer", cfg.Logger.Level, cfg.Logger.Encoding, cfg.Logger.Development)

	pool, err := pgxpool.New(ctx, cfg.Database.URL())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cm := db.NewContextManager(pool, log)

	reviewerRepo := repository.NewReviewerRepository(cm)
	applicationRepo := repository.NewApplicationRepository(cm)
	assignmentRepo := repository.NewAssignmentRepository(cm)
	conflictRepo := repository.NewConflictRepository(cm)

	alloc := allocation.NewAllocator(cfg.Allocation, log)
	reb := allocation.NewRebalancer(cfg.Allocation, log)

	return &env{
		cfg:          cfg,
		log:          log,
		pool:         pool,
		cm:           cm,
		reviewers:    reviewer.NewService(reviewerRepo, assignmentRepo),
		applications: application.NewService(applicationRepo, reviewerRepo, assignmentRepo, conflictRepo, cm),
		planner:      planner.NewService(reviewerRepo, applicationRepo, assignmentRepo, conflictRepo, cm, alloc, log),
		rebalancer:   rebalance.NewService(reviewerRepo, applicationRepo, assignmentRepo, conflictRepo, cm, reb, cfg.Allocation.MaxMoves, log),
		reports:      reportsvc.NewService(reviewerRepo, applicationRepo, assignmentRepo),
	}, nil
}

func (e *env) Close() {
	e.pool.Close()
	_ = e.log.Sync()
}
