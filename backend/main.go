// ABOUTME: Entry point for the live lottery backend service
// ABOUTME: Wires platform clients, settings and live services behind the HTTP API

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markalston/live-lottery/backend/cache"
	"github.com/markalston/live-lottery/backend/config"
	"github.com/markalston/live-lottery/backend/handlers"
	"github.com/markalston/live-lottery/backend/logger"
	"github.com/markalston/live-lottery/backend/models"
	"github.com/markalston/live-lottery/backend/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// app holds the assembled services so tests can drive them directly.
type app struct {
	handler  http.Handler
	accounts *services.AccountService
	live     *services.LiveService
	closers  []func()
}

func (a *app) Close() {
	a.live.Stop()
	for _, c := range a.closers {
		c()
	}
}

func newApp(cfg *config.Config) (*app, error) {
	dial, err := services.NewProxyDialer(cfg.AllProxy)
	if err != nil {
		return nil, fmt.Errorf("configuring proxy: %w", err)
	}
	if dial != nil {
		slog.Info("Routing platform traffic through SSH SOCKS5 proxy")
	}

	settings, err := services.NewSettingsStore(cfg.SettingsPath())
	if err != nil {
		return nil, err
	}

	accountCache := cache.New[*models.Account](time.Duration(cfg.AccountCacheTTL) * time.Second)
	roomCache := cache.New[*models.Room](time.Duration(cfg.RoomCacheTTL) * time.Second)

	passport := services.NewPassportClient(cfg.PassportBaseURL, cfg.APIBaseURL, cfg.UserAgent, dial)
	accounts := services.NewAccountService(passport, settings, accountCache)
	resolver := services.NewRoomResolver(cfg.LiveAPIBaseURL, cfg.UserAgent, dial, roomCache)
	live := services.NewLiveService(resolver, accounts, services.NewCollector(), cfg.UserAgent, dial)
	accounts.OnLogout(live.Stop)

	h := handlers.NewHandler(passport, accounts, settings, live)
	return &app{
		handler:  handlers.NewMux(h, cfg),
		accounts: accounts,
		live:     live,
		closers:  []func(){accountCache.Close, roomCache.Close},
	}, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	loginCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	a.accounts.AutoLogin(loginCtx)
	cancel()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr, "config_dir", cfg.ConfigDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
