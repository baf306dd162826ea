package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"hrdocs/internal/domain/audit"
	"hrdocs/internal/domain/compensation"
	"hrdocs/internal/domain/employees"
	"hrdocs/internal/domain/letters"
	"hrdocs/internal/platform/ai"
	"hrdocs/internal/platform/auth"
	"hrdocs/internal/platform/config"
	"hrdocs/internal/platform/db"
	"hrdocs/internal/platform/email"
	"hrdocs/internal/platform/logger"
	"hrdocs/internal/platform/metrics"
	"hrdocs/internal/platform/pdf"
	audithandler "hrdocs/internal/transport/http/handlers/audit"
	authhandler "hrdocs/internal/transport/http/handlers/auth"
	employeehandler "hrdocs/internal/transport/http/handlers/employees"
	letterhandler "hrdocs/internal/transport/http/handlers/letters"
	"hrdocs/internal/transport/http/middleware"
)

const loginAttemptsPerMinute = 10

// AuditLog records operator actions and serves them back.
type AuditLog interface {
	audit.Recorder
	audithandler.Service
}

// Deps are the collaborators the HTTP surface needs. Services are
// interfaces so the router can be built without a database.
type Deps struct {
	Config      config.Config
	Log         zerolog.Logger
	Metrics     *metrics.Collector
	Employees   employeehandler.Service
	Letters     letterhandler.Service
	Idempotency employeehandler.IdempotencyStore
	Audit       AuditLog
	Ready       func(ctx context.Context) error
}

type App struct {
	Config config.Config
	DB     *db.Pool
	Router http.Handler
}

// Services wires the domain layer on top of an open pool.
type Services struct {
	Employees *employees.Service
	Letters   *letters.Service
	Metrics   *metrics.Collector
}

func NewServices(ctx context.Context, cfg config.Config, pool *db.Pool, log zerolog.Logger) (Services, error) {
	collector := metrics.New()

	policy := compensation.DefaultPolicy()
	policy.ProfessionalTax = cfg.ProfessionalTax
	calc := compensation.NewCalculator(policy)
	store := employees.NewStore(pool)
	employeeService := employees.NewService(store, calc, log.With().Str("component", "employees").Logger()).WithObserver(collector)

	engine, err := letters.NewEngine()
	if err != nil {
		return Services{}, fmt.Errorf("load letter templates: %w", err)
	}
	generator, err := ai.New(ctx, cfg)
	if err != nil {
		return Services{}, fmt.Errorf("ai provider: %w", err)
	}
	pipeline := letters.NewPipeline(engine, generator, store, cfg.AITimeout, log.With().Str("component", "letters").Logger())
	pipeline.Observer = collector

	company := letters.Company{Name: cfg.CompanyName, Address: cfg.CompanyAddress, Contact: cfg.CompanyContact}
	letterService := letters.NewService(
		pipeline,
		employeeService,
		store,
		pdf.NewRenderer(cfg.CompanyName),
		email.New(cfg),
		company,
		cfg.CurrencyCode,
		log.With().Str("component", "letters").Logger(),
	)

	return Services{Employees: employeeService, Letters: letterService, Metrics: collector}, nil
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	var requests middleware.RequestRecorder
	if d.Metrics != nil {
		requests = d.Metrics
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(d.Log, requests))
	router.Use(middleware.Recoverer(d.Log))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && d.Metrics != nil {
		router.Handle("/metrics", d.Metrics.Handler())
	}

	authenticator := auth.Authenticator{
		Secret:       cfg.JWTSecret,
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
		TTL:          auth.TokenTTL,
	}
	authHandler := authhandler.NewHandler(authenticator)
	var recorder audit.Recorder
	if d.Audit != nil {
		recorder = d.Audit
	}
	employeeHandler := employeehandler.NewHandler(d.Employees, d.Idempotency, recorder, cfg.MaxUploadBytes)
	letterHandler := letterhandler.NewHandler(d.Letters, recorder, middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(loginAttemptsPerMinute, time.Minute, middleware.WithKeyFunc(middleware.AuthEmailOrIPKey("email")))).
			Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Get("/auth/me", authHandler.HandleMe)
			r.Route("/employees", func(r chi.Router) {
				employeeHandler.RegisterRoutes(r)
				r.Get("/{employeeID}/letters", letterHandler.HandleHistory)
			})
			r.Route("/letters", letterHandler.RegisterRoutes)
			r.Post("/email/send", letterHandler.HandleSend)
			if d.Audit != nil {
				audithandler.NewHandler(d.Audit).RegisterRoutes(r)
			}
		})
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	return router
}

// Run loads configuration, prepares the database and serves until SIGINT
// or SIGTERM.
func Run() error {
	cfg := config.Load()
	log := logger.New(cfg.Environment, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		applied, err := db.Migrate(ctx, pool, cfg.MigrationsDir)
		if err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		if len(applied) > 0 {
			log.Info().Strs("migrations", applied).Msg("migrations applied")
		}
	}

	services, err := NewServices(ctx, cfg, pool, log)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; the API is open to anyone who can reach it")
	}

	app := App{
		Config: cfg,
		DB:     pool,
		Router: NewRouter(Deps{
			Config:      cfg,
			Log:         log,
			Metrics:     services.Metrics,
			Employees:   services.Employees,
			Letters:     services.Letters,
			Idempotency: middleware.NewIdempotencyStore(pool),
			Audit:       audit.New(pool),
			Ready:       pool.Ping,
		}),
	}

	srv := &http.Server{
		Addr:              app.Config.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("aiProvider", cfg.AIProvider).Msg("HR letter desk listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if err == nil || os.IsNotExist(err) {
		index := filepath.Join(h.staticPath, h.indexPath)
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
		return
	}

	http.NotFound(w, r)
}
