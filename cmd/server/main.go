package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/exampapers/backend/internal/auth"
	"github.com/exampapers/backend/internal/catalog"
	"github.com/exampapers/backend/internal/config"
	"github.com/exampapers/backend/internal/database"
	"github.com/exampapers/backend/internal/favorites"
	"github.com/exampapers/backend/internal/handlers"
	"github.com/exampapers/backend/internal/logger"
	"github.com/exampapers/backend/internal/middleware"
	"github.com/exampapers/backend/internal/progress"
	"github.com/exampapers/backend/internal/session"
	"github.com/exampapers/backend/internal/solutions"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(logger.Options{Mode: cfg.Log.Mode, Redact: cfg.Log.Redact, HashSalt: cfg.Log.HashSalt})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer appLogger.Sync()

	// Initialize database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		appLogger.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		appLogger.Fatal("failed to run migrations", "error", err)
	}

	source, err := buildCatalog(cfg, db, appLogger)
	if err != nil {
		appLogger.Fatal("failed to build catalog", "error", err)
	}

	// Initialize services
	tokens := auth.NewTokens(cfg.Auth)
	sessions := session.NewManager(tokens.TTL())
	favService := favorites.NewService(source, favorites.NewStore(db, database.Postgres), appLogger)
	progService := progress.NewService(source, progress.NewStore(db, database.Postgres), appLogger)
	llm, model := solutions.NewClient(cfg.Solutions, appLogger)
	drafter := solutions.NewDrafter(llm, model, source, appLogger)

	// Initialize handlers
	authHandler := auth.NewHandler(auth.NewStore(db, database.Postgres), tokens, sessions, favService, appLogger)
	apiHandler := handlers.NewHandler(source, favService, progService, drafter, appLogger)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(tokens, sessions))
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")

	protected.HandleFunc("/categories", apiHandler.ListCategories).Methods("GET")
	protected.HandleFunc("/categories/{id}/years", apiHandler.ListYears).Methods("GET")
	protected.HandleFunc("/categories/{id}/papers", apiHandler.ListPapers).Methods("GET")
	protected.HandleFunc("/papers/{id}", apiHandler.GetPaper).Methods("GET")
	protected.HandleFunc("/papers/{id}/questions", apiHandler.OpenPaper).Methods("GET")
	protected.HandleFunc("/questions/{id}", apiHandler.GetQuestion).Methods("GET")

	protected.HandleFunc("/selection", apiHandler.GetSelection).Methods("GET")
	protected.HandleFunc("/selection", apiHandler.UpdateSelection).Methods("PUT")
	protected.HandleFunc("/selection", apiHandler.ClearSelection).Methods("DELETE")
	protected.HandleFunc("/selection/papers", apiHandler.SelectionPapers).Methods("GET")

	protected.HandleFunc("/favorites", apiHandler.ListFavorites).Methods("GET")
	protected.HandleFunc("/favorites/{questionID}", apiHandler.AddFavorite).Methods("PUT")
	protected.HandleFunc("/favorites/{questionID}", apiHandler.RemoveFavorite).Methods("DELETE")

	protected.HandleFunc("/progress", apiHandler.GetProgress).Methods("GET")
	protected.HandleFunc("/progress", apiHandler.ResetProgress).Methods("DELETE")
	protected.HandleFunc("/progress/{questionID}", apiHandler.MarkCompleted).Methods("POST")

	// Admin routes
	if cfg.Solutions.AdminKey != "" {
		admin := api.PathPrefix("/admin").Subrouter()
		admin.Use(middleware.AdminKey(cfg.Solutions.AdminKey))
		admin.HandleFunc("/questions/{id}/draft-steps", apiHandler.DraftSteps).Methods("POST")
		admin.HandleFunc("/questions/{id}", apiHandler.RemoveQuestion).Methods("DELETE")
		appLogger.Info("admin routes enabled", "mode", cfg.Solutions.Mode, "model", model)
	}

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Admin-Key"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessions.StartSweeper(ctx, 10*time.Minute, appLogger)

	go func() {
		appLogger.Info("server starting", "port", cfg.Port, "env", cfg.Env, "catalog", cfg.Catalog.Source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down", "sessions", sessions.Count())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("shutdown failed", "error", err)
	}
}

// buildCatalog picks the configured backing store and layers the timeout guard
// and, when redis is configured, the read-through cache over it.
func buildCatalog(cfg config.Config, db *sql.DB, log *logger.Logger) (catalog.Source, error) {
	var base catalog.Source
	switch cfg.Catalog.Source {
	case "postgres":
		base = catalog.NewSQLStore(db, database.Postgres)
	default:
		mem, err := catalog.NewMemorySource(catalog.SampleFixture())
		if err != nil {
			return nil, err
		}
		base = mem
	}

	var source catalog.Source = catalog.NewTimeoutSource(base, cfg.Catalog.Timeout)

	if cfg.Redis.Enabled() {
		rdb, err := catalog.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, serving catalog uncached", "addr", cfg.Redis.Addr, "error", err)
			return source, nil
		}
		source = catalog.NewCachedSource(source, rdb, cfg.Redis.CacheTTL, log)
	}

	log.Info("catalog ready", "source", cfg.Catalog.Source, "cached", cfg.Redis.Enabled())
	return source, nil
}
