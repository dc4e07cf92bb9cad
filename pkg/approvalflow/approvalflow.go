package approvalflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/RealZimboGuy/approvalflow/internal/auth"
	"github.com/RealZimboGuy/approvalflow/internal/config"
	"github.com/RealZimboGuy/approvalflow/internal/controllers"
	"github.com/RealZimboGuy/approvalflow/internal/engine"
	"github.com/RealZimboGuy/approvalflow/internal/repository"
	"github.com/RealZimboGuy/approvalflow/internal/util"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// App is a fully wired approval service. Build it with New, start the
// background workers and the HTTP server with Run and release it with Close.
type App struct {
	DB       *sql.DB
	Mux      *http.ServeMux
	Registry *prometheus.Registry
	Service  *engine.WorkflowService
	Sweeper  *engine.Sweeper
	Audit    *engine.AuditRecorder
	Users    *repository.UserRepository
}

// New opens and migrates the database, seeds the initial users and registers
// every route on mux. A nil mux gets a fresh one.
func New(ctx context.Context, mux *http.ServeMux, clock core.Clock) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	db, err := openDatabase()
	if err != nil {
		return nil, err
	}

	workflowRepo := repository.NewWorkflowRepository(db)
	workflowActionRepo := repository.NewWorkflowActionRepository(db)
	sweepRunRepo := repository.NewSweepRunRepository(db)
	userRepo := repository.NewUserRepository(db, clock)

	if err := seedUsers(ctx, userRepo); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed users: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := engine.NewMetrics(registry)

	graph := engine.NewStatusGraph()
	audit := engine.NewAuditRecorder(workflowActionRepo, config.GetSystemSettingInteger(config.AUDIT_BUFFER_SIZE), metrics)
	service := engine.NewWorkflowService(workflowRepo, workflowActionRepo, graph, audit, clock, metrics,
		config.GetSystemSettingBool(config.ENGINE_STRICT_TRANSITIONS))
	sweeper := engine.NewSweeper(workflowRepo, sweepRunRepo, graph, audit, clock, metrics,
		config.GetSystemSettingDuration(config.SWEEP_STALE_AFTER))

	secret := config.GetSystemSettingString(config.AUTH_JWT_SECRET)
	if secret == "" {
		secret = randomSecret(32)
		slog.Warn("No JWT secret configured, tokens will not survive a restart", "setting", config.AUTH_JWT_SECRET)
	}
	tokens, err := auth.NewTokenService(secret, config.GetSystemSettingDuration(config.AUTH_TOKEN_TTL), clock)
	if err != nil {
		db.Close()
		return nil, err
	}

	if mux == nil {
		mux = http.NewServeMux()
	}
	authController := controllers.NewAuthController(userRepo, tokens, config.GetSystemSettingDuration(config.SERVER_REQUEST_TIMEOUT))
	authController.RegisterRoutes(mux)
	controllers.NewWorkflowsController(service, authController).RegisterRoutes(mux)
	controllers.NewUsersController(authController).RegisterRoutes(mux)
	controllers.NewSweepsController(sweeper, authController).RegisterRoutes(mux)
	controllers.NewReportsController(service, authController).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			util.WriteError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "database unreachable")
			return
		}
		util.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return &App{
		DB:       db,
		Mux:      mux,
		Registry: registry,
		Service:  service,
		Sweeper:  sweeper,
		Audit:    audit,
		Users:    userRepo,
	}, nil
}

// Run serves HTTP and runs the audit writer and the scheduled sweeper until ctx
// is cancelled or one of them fails. In-flight requests get server.shutdown_timeout
// to finish.
func (a *App) Run(ctx context.Context) error {
	addr := ":" + config.GetSystemSettingString(config.SERVER_WEB_PORT)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return a.serve(ctx, ln)
}

// serve owns ln. The audit recorder only stops after the HTTP server has shut
// down, so changes committed by requests draining during shutdown are still recorded.
func (a *App) serve(ctx context.Context, ln net.Listener) error {
	auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(ctx))
	defer stopAudit()
	auditDone := make(chan error, 1)
	go func() { auditDone <- a.Audit.Run(auditCtx) }()

	g, gctx := errgroup.WithContext(ctx)

	if config.GetSystemSettingBool(config.SWEEP_ENABLED) {
		g.Go(func() error { return a.Sweeper.Run(gctx, config.GetSystemSettingString(config.SWEEP_SCHEDULE)) })
	} else {
		slog.Info("Auto-completion sweeper disabled")
	}

	srv := &http.Server{
		Handler:           a.Mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		slog.Info("Starting HTTP server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), config.GetSystemSettingDuration(config.SERVER_SHUTDOWN_TIMEOUT))
		defer cancel()
		slog.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	stopAudit()
	if auditErr := <-auditDone; err == nil {
		err = auditErr
	}
	return err
}

func (a *App) Close() error {
	return a.DB.Close()
}

// Start loads the configuration, boots the service and blocks until ctx is
// cancelled.
func Start(ctx context.Context, mux *http.ServeMux) error {
	if err := config.Load(""); err != nil {
		return err
	}
	applyLogLevel()
	app, err := New(ctx, mux, core.NewRealClock())
	if err != nil {
		return err
	}
	defer app.Close()
	return app.Run(ctx)
}
