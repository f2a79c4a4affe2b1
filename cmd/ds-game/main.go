package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/icedfool/rpi-ds-game/internal/config"
	"github.com/icedfool/rpi-ds-game/internal/game"
	"github.com/icedfool/rpi-ds-game/internal/handlers"
	"github.com/icedfool/rpi-ds-game/internal/hub"
	"github.com/icedfool/rpi-ds-game/internal/ledger"
	"github.com/icedfool/rpi-ds-game/internal/publisher"
	"github.com/icedfool/rpi-ds-game/internal/retry"
	"github.com/icedfool/rpi-ds-game/internal/session"
	"github.com/redis/go-redis/v9"
)

func main() {
	fmt.Println("=== RPI DS Game API ===")

	cfg := config.LoadConfig()

	// Context for hub and websocket lifetimes
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := session.NewStore(game.NewEngine(nil))

	// Live feed
	feed := hub.NewHub()
	go feed.Run(ctx)
	store.AddObserver(feed)

	// Slow observers, drained on shutdown
	var queues []*session.AsyncObserver

	// Event stream (optional)
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			fmt.Printf("❌ Failed to parse Redis URL: %v\n", err)
			os.Exit(1)
		}
		if cfg.Redis.Password != "" {
			redisOpts.Password = cfg.Redis.Password
		}
		redisClient = redis.NewClient(redisOpts)

		if err := redisClient.Ping(ctx).Err(); err != nil {
			fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Connected to Redis (stream: %s)\n", cfg.Redis.EventsStream)

		streamQueue := session.NewAsyncObserver("event_stream",
			publisher.NewStreamPublisher(redisClient, cfg.Redis.EventsStream, cfg.Redis.StreamMaxLen),
			cfg.Game.ObserverQueueSize, cfg.Game.ObserverTimeout)
		store.AddObserver(streamQueue)
		queues = append(queues, streamQueue)
	} else {
		fmt.Println("⚠️  REDIS_URL not set, event stream disabled")
	}

	// Action ledger (optional)
	var (
		ledgerDB *sql.DB
		history  handlers.HistoryReader
	)
	if cfg.LedgerEnabled() {
		db, err := ledger.Open(ctx, cfg.Ledger.DSN)
		if err != nil {
			fmt.Printf("❌ Failed to connect to ledger: %v\n", err)
			os.Exit(1)
		}
		ledgerDB = db
		fmt.Println("✓ Connected to ledger DB")

		writer := ledger.NewWriter(db, retry.NewRetryPolicy(cfg.Ledger.RetryAttempts, cfg.Ledger.RetryDelay))
		ledgerQueue := session.NewAsyncObserver("ledger", writer, cfg.Game.ObserverQueueSize, cfg.Game.ObserverTimeout)
		store.AddObserver(ledgerQueue)
		queues = append(queues, ledgerQueue)
		history = writer
	} else {
		fmt.Println("⚠️  LEDGER_DSN not set, action history disabled")
	}

	handler := handlers.NewHandler(ctx, store, feed, history, cfg.Game.DefaultCreditHours)
	for _, q := range queues {
		handler.RegisterMetrics(q.Name()+"_queue", q.GetMetrics)
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Websocket pumps run on ctx, so the timeout only bounds the upgrade
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

	handler.Routes(r)

	srv := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("✓ DS Game API listening on %s\n", cfg.Server.Addr)
		fmt.Printf("  CORS origins: %v\n", cfg.Server.CORSOrigins)
		fmt.Println("  Endpoints:")
		fmt.Println("    GET  /")
		fmt.Println("    GET  /health")
		fmt.Println("    GET  /api/game/actions")
		fmt.Println("    POST /api/game/start")
		fmt.Println("    POST /api/game/{name}/action")
		fmt.Println("    GET  /api/game/{name}/status")
		fmt.Println("    GET  /api/game/{name}/history")
		fmt.Println("    GET  /ws/game/{name}")

		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			fmt.Printf("❌ Server error: %v\n", err)
			os.Exit(1)
		}

	case sig := <-shutdown:
		fmt.Printf("\n🛑 Received signal: %v\n", sig)

		// Stop the hub and websocket pumps first
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("⚠️  Graceful shutdown failed: %v\n", err)
			if err := srv.Close(); err != nil {
				fmt.Printf("❌ Could not stop server: %v\n", err)
			}
		}
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer drainCancel()
	for _, q := range queues {
		if err := q.Close(drainCtx); err != nil {
			fmt.Printf("⚠️  %v\n", err)
		}
	}

	if redisClient != nil {
		redisClient.Close()
	}
	if ledgerDB != nil {
		ledgerDB.Close()
	}

	fmt.Println("✓ Shutdown complete")
}
