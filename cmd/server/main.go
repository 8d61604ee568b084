package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"archeohub-backend/internal/catalog"
	"archeohub-backend/internal/config"
	"archeohub-backend/internal/database"
	"archeohub-backend/internal/database/migrations"
	"archeohub-backend/internal/handlers"
	"archeohub-backend/internal/logger"
	"archeohub-backend/internal/middleware"
	"archeohub-backend/internal/repository"
	"archeohub-backend/internal/router"
	"archeohub-backend/internal/services"
	"archeohub-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	slog.Info("🚀 Starting ArcheoHub backend", "env", cfg.Env)
	slog.Info("✓ Environment variables loaded")

	ctx := context.Background()

	// ──── Steps 2-4: PostgreSQL, Migrations, Redis (accounts only) ────
	acct := startAccounts(ctx, cfg)
	defer acct.Close()

	// ──── Step 5: Initialize Completion Provider ────
	completer, err := services.NewCompleter(ctx, services.CompleterConfig{
		Provider:      cfg.CompletionProvider,
		Production:    cfg.IsProduction(),
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
	})
	if err != nil {
		fatal("✗ Completion provider initialization failed", err)
	}
	if c, ok := completer.(io.Closer); ok {
		defer c.Close()
	}
	slog.Info("✓ Completion provider ready", "provider", cfg.CompletionProvider, "timeout", cfg.CompletionTimeout)

	// ──── Step 6: Load Catalog ────
	cat, err := catalog.Default()
	if err != nil {
		fatal("✗ Catalog failed to load", err)
	}
	slog.Info("✓ Catalog loaded", "artifacts", len(cat.Artifacts), "excavations", len(cat.Excavations), "research", len(cat.Research))

	// ──── Initialize Repositories & Services ────
	searcher := services.NewBingSearch(cfg.BingAPIKey, cfg.BingEndpoint)

	deps := router.Deps{
		HealthHandler:  handlers.NewHealthHandler(acct.dbPinger(), acct.redisPinger()),
		CatalogHandler: handlers.NewCatalogHandler(cat),
		FrontendOrigin: cfg.FrontendOrigin,
	}

	var events services.EventPublisher
	if acct.enabled() {
		sessionRepo := repository.NewSessionRepo(acct.redis.Sessions)
		jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, sessionRepo)
		authService := services.NewAuthService(repository.NewUserRepo(acct.pool), sessionRepo, jwtAuth)
		events = services.NewRedisEventPublisher(acct.redis.Sessions)

		// ──── Step 7: Start WebSocket Hub ────
		wsHub := websocket.NewHub(websocket.NewRedisSubscriber(acct.redis.PubSub), jwtAuth, cfg.FrontendOrigin)
		defer wsHub.Close()
		slog.Info("✓ WebSocket hub started")

		authLimiter := middleware.NewRateLimiter(10, time.Minute)
		defer authLimiter.Stop()

		deps.JWTAuth = jwtAuth
		deps.AuthLimiter = authLimiter
		deps.AuthHandler = handlers.NewAuthHandler(authService, cfg.IsProduction())
		deps.WSHub = wsHub.HandleWebSocket
	}

	chatService := services.NewChatService(searcher, completer, events, cfg.CompletionTimeout)
	deps.ChatHandler = handlers.NewChatHandler(chatService)

	// ──── Step 8: Start HTTP Server ────
	r := router.New(deps)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// search (10s) plus the completion budget must fit
		WriteTimeout: cfg.CompletionTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		slog.Info(fmt.Sprintf("✓ ArcheoHub backend ready on http://localhost:%s", cfg.Port))
		slog.Info(fmt.Sprintf("  API: http://localhost:%s/api", cfg.Port))
		if acct.enabled() {
			slog.Info(fmt.Sprintf("  WS:  ws://localhost:%s/api/ws", cfg.Port))
		}
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	})

	if err := g.Wait(); err != nil {
		fatal("Server error", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

// accounts holds the optional login stack. A nil pool or redis means the
// stack is off and only the chat, health and catalog routes are served.
type accounts struct {
	pool  *pgxpool.Pool
	redis *database.RedisClients
}

func startAccounts(ctx context.Context, cfg *config.Config) *accounts {
	a := &accounts{}
	if !cfg.AuthEnabled() {
		slog.Warn("⚠ Accounts disabled; serving chat, health and catalog only", "missing", cfg.MissingAuthSettings())
		return a
	}

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("✗ PostgreSQL connection failed; accounts disabled", "error", err)
		return a
	}
	slog.Info("✓ PostgreSQL connected")

	if err := database.RunMigrations(ctx, pool, migrations.FS); err != nil {
		pool.Close()
		slog.Error("✗ Database migration failed; accounts disabled", "error", err)
		return a
	}
	slog.Info("✓ Database migrations applied")

	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
	if err != nil {
		pool.Close()
		slog.Error("✗ Redis connection failed; accounts disabled", "error", err)
		return a
	}
	slog.Info("✓ Redis connected")

	a.pool = pool
	a.redis = redisClients
	return a
}

func (a *accounts) enabled() bool { return a.pool != nil && a.redis != nil }

// dbPinger and redisPinger return untyped nils so the health handler reports
// false instead of calling through a nil pointer.
func (a *accounts) dbPinger() handlers.Pinger {
	if a.pool == nil {
		return nil
	}
	return a.pool
}

func (a *accounts) redisPinger() handlers.Pinger {
	if a.redis == nil {
		return nil
	}
	return a.redis
}

func (a *accounts) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
