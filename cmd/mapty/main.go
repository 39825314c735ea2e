package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/meltforce/mapty/internal/app"
	"github.com/meltforce/mapty/internal/config"
	"github.com/meltforce/mapty/internal/mcp"
	"github.com/meltforce/mapty/internal/server"
	"github.com/meltforce/mapty/internal/storage"
	"github.com/meltforce/mapty/internal/view"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("mapty starting", "version", Version)

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("reading .env failed", "error", err)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *migrateOnly {
		if cfg.Store.Driver != storage.DriverPostgres {
			log.Info("migrate-only: nothing to migrate", "driver", cfg.Store.Driver)
			return
		}
		if err := storage.RunMigrations(cfg.Store.DSN, cfg.Store.MigrationsPath); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied, exiting")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open workout store
	store, err := storage.Open(ctx, storage.Options{
		Driver:         cfg.Store.Driver,
		Path:           cfg.Store.Path,
		DSN:            cfg.Store.DSN,
		MigrationsPath: cfg.Store.MigrationsPath,
	})
	if err != nil {
		log.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("store opened", "driver", cfg.Store.Driver)

	// Wire the controller to the headless views
	views := server.Views{
		Map:     view.NewMap(),
		Form:    view.NewForm(),
		List:    view.NewList(),
		Notices: view.NewNotices(log),
	}
	ctrl := app.New(app.Deps{
		Map: views.Map,
		Geolocator: &view.StaticGeolocator{
			Position: cfg.Geolocation.Position(),
			Delay:    cfg.Geolocation.Delay,
		},
		Store:    store,
		Form:     views.Form,
		List:     views.List,
		Notifier: views.Notices,
		Log:      log,
	}, app.Options{
		StoreKey:      cfg.Store.Key,
		Zoom:          cfg.Map.Zoom,
		GeoTimeout:    cfg.Geolocation.Timeout,
		FormHideDelay: cfg.Form.HideDelay,
	})
	if err := ctrl.Start(ctx); err != nil {
		log.Error("controller start failed", "error", err)
		os.Exit(1)
	}
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("controller stopped", "error", err)
		}
	}()

	// Create server
	srv := server.New(ctrl, views, cfg.Auth.APIKey, log)
	mcpSrv := mcp.New(mcp.NewLocal(ctrl), Version, log)
	srv.Mount("/mcp", mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	cancel()
	<-loopDone
	log.Info("server stopped")
}
