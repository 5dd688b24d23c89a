package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	adminhandler "parishbook/internal/admin/handler"
	"parishbook/internal/admin/lockout"
	adminservice "parishbook/internal/admin/service"
	adminstore "parishbook/internal/admin/store"
	"parishbook/internal/admin/token"
	"parishbook/internal/audit"
	audithandler "parishbook/internal/audit/handler"
	familyhandler "parishbook/internal/family/handler"
	familyservice "parishbook/internal/family/service"
	familystore "parishbook/internal/family/store"
	personhandler "parishbook/internal/person/handler"
	personservice "parishbook/internal/person/service"
	personstore "parishbook/internal/person/store"
	"parishbook/internal/platform/config"
	"parishbook/internal/platform/httpserver"
	"parishbook/internal/platform/logger"
	"parishbook/internal/platform/metrics"
	"parishbook/internal/platform/middleware"
	"parishbook/internal/platform/postgres"
	"parishbook/internal/platform/redis"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Storage: postgres when configured, in-memory otherwise.
	var (
		db            *sql.DB
		persons       personstore.Store
		families      familystore.Store
		admins        adminstore.Store
		auditRecorder audit.Recorder
		auditEvents   audithandler.Reader
		familyOpts    []familyservice.Option
	)
	if cfg.PostgresDSN != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		persons = personstore.NewPostgres(db)
		families = familystore.NewPostgres(db, persons)
		admins = adminstore.NewPostgres(db)
		auditStore := audit.NewPostgres(db)
		auditRecorder = auditStore
		auditEvents = auditStore
		familyOpts = append(familyOpts, familyservice.WithStoreTx(newFamilyPostgresTx(db)))
		log.Info("using postgres storage")
	} else {
		memPersons := personstore.NewInMemoryStore()
		persons = memPersons
		families = familystore.NewInMemoryStore(memPersons)
		admins = adminstore.NewInMemory()
		auditStore := audit.NewInMemoryStore()
		auditRecorder = auditStore
		auditEvents = auditStore
		log.Warn("POSTGRES_DSN not set, using in-memory storage")
	}

	// Login lockout: redis when configured, in-process otherwise.
	policy := lockout.Policy{
		Threshold: cfg.LockoutThreshold,
		Window:    cfg.LockoutWindow,
		Duration:  cfg.LockoutDuration,
	}
	var loginLockout lockout.Lockout = lockout.NewMemory(policy)
	redisClient, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		loginLockout = lockout.NewRedis(redisClient.Client, policy)
		log.Info("using redis login lockout")
	}

	tokens := token.NewManager(cfg.JWTSigningKey, cfg.TokenTTL)

	authService := adminservice.New(admins, tokens,
		adminservice.WithLogger(log),
		adminservice.WithMetrics(m),
		adminservice.WithAuditRecorder(auditRecorder),
		adminservice.WithLockout(loginLockout),
	)
	if err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Error("admin bootstrap failed", "error", err)
		os.Exit(1)
	}

	familyOpts = append(familyOpts,
		familyservice.WithLogger(log),
		familyservice.WithMetrics(m),
		familyservice.WithAuditRecorder(auditRecorder),
	)
	familyService := familyservice.New(families, persons, familyOpts...)
	personService := personservice.New(persons, families)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Metadata)
	router.Use(middleware.Logger(log))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	adminhandler.New(authService, log).Register(router)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, log))
		personhandler.New(personService, familyService, log).Register(r)
		familyhandler.New(familyService, log).Register(r)
		audithandler.New(auditEvents, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting parishbook", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
