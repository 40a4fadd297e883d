package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"main/internal/api"
	"main/internal/auth"
	"main/internal/config"
	"main/internal/element"
	"main/internal/handlers"
	"main/internal/middleware"
	"main/internal/room"
	"main/internal/store"
	"main/internal/transport"
	"main/internal/user"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	tokens := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)
	validator := element.NewValidator()
	limits := middleware.NewLimits(
		cfg.MaxRoomSize, cfg.MaxElements, cfg.MaxMessageSize, cfg.MaxRooms,
		cfg.MaxStyleDepth, cfg.MaxStyleKeys, cfg.MessagesPerSecond, cfg.BurstSize)
	ipRateLimiter := middleware.NewIPRateLimit(cfg.ConnsPerMinute, cfg.ConnBurst)

	sessionMgr := user.NewSessionManager(rate.Limit(cfg.MessagesPerSecond), cfg.BurstSize)
	roomManager := room.NewManager(st.ListElements, cfg.MaxRooms, cfg.MaxRoomSize)
	broadcaster := room.NewBroadcaster()
	msgRouter := handlers.NewMessageRouter(validator, limits, st, broadcaster)

	wsHandler := transport.NewHandler(cfg.Domains, ipRateLimiter, limits,
		sessionMgr, roomManager, msgRouter, broadcaster, tokens, st)

	restAPI := api.New(st, tokens, validator, limits, roomManager, broadcaster)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)
	mux.Handle("/", restAPI.Router())

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupLoop(ctx, roomManager, sessionMgr, ipRateLimiter)

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server started", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}

// cleanupLoop sweeps expired rooms, sessions, and IP limiters.
func cleanupLoop(ctx context.Context, rooms *room.Manager, sessions *user.SessionManager, ips *middleware.IPRateLimit) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rooms.Cleanup()
			sessions.Cleanup()
			ips.Cleanup()
		}
	}
}
