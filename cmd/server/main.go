package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutricionista-backend/internal/config"
	"nutricionista-backend/internal/database"
	"nutricionista-backend/internal/handlers"
	"nutricionista-backend/internal/logger"
	"nutricionista-backend/internal/middleware"
	"nutricionista-backend/internal/repository"
	"nutricionista-backend/internal/router"
	"nutricionista-backend/internal/services"
	"nutricionista-backend/internal/session"
	"nutricionista-backend/internal/storage"
	"nutricionista-backend/internal/websocket"
	"nutricionista-backend/internal/worker"
)

type stores struct {
	sessions repository.SessionStore
	plans    repository.MealPlanStore
	progress repository.ProgressStore
	close    func()
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	ctx := context.Background()

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputPath: cfg.LogOutput}); err != nil {
		fmt.Fprintf(os.Stderr, "✗ Logger initialization failed: %v\n", err)
		os.Exit(1)
	}
	logger.Info("🚀 Starting Nutricionista IA backend...")

	if err := cfg.Validate(); err != nil {
		fatal("✗ Invalid configuration", err)
	}
	logger.Info("✓ Environment variables loaded", "env", cfg.Env, "storage", cfg.StorageDriver, "ai_provider", cfg.AIProvider)

	// ──── Step 2: Initialize Storage ────
	st, err := openStores(ctx, cfg)
	if err != nil {
		fatal("✗ Storage initialization failed", err)
	}
	defer st.close()

	// ──── Step 3: Initialize Redis Clients (optional) ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		redisClients, err = database.NewRedisClients(ctx, cfg.RedisURL)
		if err != nil {
			fatal("✗ Redis connection failed", err)
		}
		defer redisClients.Close()
		logger.Info("✓ Redis connected")
	} else {
		logger.Warn("REDIS_URL not set: websocket updates and background generation disabled")
	}

	// ──── Step 4: Initialize AI Backend ────
	backend, err := services.NewBackend(cfg)
	if err != nil {
		fatal("✗ AI backend initialization failed", err)
	}
	defer backend.Close()
	logger.Info("✓ AI backend initialized", "provider", cfg.AIProvider)

	// ──── Step 5: Session Controllers ────
	opts := session.Options{
		Timeout: cfg.GenerationTimeout,
		Policy:  session.PolicyByName(cfg.ChatErrorPolicy),
	}
	var notifier *services.RedisNotifier
	if redisClients != nil {
		notifier = services.NewRedisNotifier(redisClients.Queue)
		opts.Notifier = notifier
	}
	manager := session.NewManager(backend, opts, cfg.SessionIdleTTL)
	manager.Start()
	logger.Info("✓ Session manager started", "idle_ttl", cfg.SessionIdleTTL, "chat_policy", cfg.ChatErrorPolicy)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	sessionService := services.NewSessionService(st.sessions, jwtAuth, cfg.SessionTokenTTL)
	assistantService := services.NewAssistantService(sessionService, st.plans, manager)
	progressService := services.NewProgressService(sessionService, st.progress)
	dashboardService := services.NewDashboardService(sessionService, manager, cfg.Location())

	// ──── Step 6: Start Meal Plan Worker Pool ────
	var workerPool *worker.Pool
	var queue handlers.JobQueue
	var wsHub *websocket.Hub
	if redisClients != nil {
		workerPool = worker.NewPool(redisClients.Queue, assistantService, notifier, cfg.MealPlanWorkers)
		workerPool.Start()
		queue = workerPool
		logger.Info("✓ Worker pool started", "workers", cfg.MealPlanWorkers)

		// ──── Step 7: Start WebSocket Hub ────
		wsHub = websocket.NewHub(redisClients.PubSub, jwtAuth)
		logger.Info("✓ WebSocket hub started")
	}

	// ──── Step 8: Start HTTP Server ────
	r := router.New(jwtAuth, router.Handlers{
		Session:   handlers.NewSessionHandler(sessionService),
		MealPlan:  handlers.NewMealPlanHandler(assistantService, sessionService, queue),
		Chat:      handlers.NewChatHandler(assistantService),
		Label:     handlers.NewLabelHandler(assistantService, cfg.MaxImageBytes),
		Progress:  handlers.NewProgressHandler(progressService),
		Dashboard: handlers.NewDashboardHandler(dashboardService, assistantService),
		MCP:       handlers.NewMCPHandler(assistantService, cfg.MaxImageBytes),
	}, wsHub, cfg.FrontendURL)

	// Generation calls can outlast the usual write budget.
	writeTimeout := cfg.GenerationTimeout + 15*time.Second

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")
		if workerPool != nil {
			workerPool.Stop()
		}
		if wsHub != nil {
			wsHub.Close()
		}
		manager.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info(fmt.Sprintf("✓ Nutricionista IA ready on http://localhost:%s", cfg.Port))
	logger.Info(fmt.Sprintf("  API: http://localhost:%s/api/v1", cfg.Port))
	if wsHub != nil {
		logger.Info(fmt.Sprintf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port))
	}

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		fatal("Server error", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StorageDriver {
	case "sqlite":
		store, err := storage.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("✓ SQLite store opened", "path", cfg.SQLitePath)
		return &stores{
			sessions: store,
			plans:    store,
			progress: store,
			close:    func() { store.Close() },
		}, nil

	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("✓ PostgreSQL connected")

		if err := database.RunMigrations(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database migration failed: %w", err)
		}
		logger.Info("✓ Database migrations applied")

		return &stores{
			sessions: repository.NewSessionRepo(pool),
			plans:    repository.NewMealPlanRepo(pool),
			progress: repository.NewProgressRepo(pool),
			close:    pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
