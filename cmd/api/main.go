package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vip7612-maker/monglemongle/internal/bootstrap"
	"github.com/vip7612-maker/monglemongle/internal/http/handlers"
	"github.com/vip7612-maker/monglemongle/internal/http/httpapi"
	"github.com/vip7612-maker/monglemongle/internal/infra"
	"github.com/vip7612-maker/monglemongle/internal/metrics"
	"github.com/vip7612-maker/monglemongle/internal/middleware"
	"github.com/vip7612-maker/monglemongle/internal/realtime"
	"github.com/vip7612-maker/monglemongle/internal/service"
	"github.com/vip7612-maker/monglemongle/internal/storage"
)

func main() {
	// .env.local wins over .env; both are optional.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)
	m := metrics.New(cfg.AppEnv)

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open store")
	}

	svc := service.NewSubmissions(service.Options{
		Store:         store,
		Notifier:      bootstrap.NewNotifier(cfg, logger),
		Logger:        logger,
		Metrics:       m,
		NotifyTimeout: cfg.AITimeout,
		Goal:          cfg.GoalSponsors,
	})

	auth := middleware.NewAdminAuth(cfg.AdminPassphrase, cfg.AdminTokenTTL)
	if auth.Open() {
		logger.Warn().Msg("ADMIN_PASSPHRASE not set, admin routes are open")
	}

	hub := realtime.NewHub(realtime.Options{
		Service:        svc,
		Auth:           auth,
		Logger:         logger,
		Metrics:        m,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	app := handlers.NewApp(svc, hub, bootstrap.NewExporter(cfg, logger), auth, logger, m)
	if cfg.BackupDir != "" {
		archive, err := storage.NewFileStore(cfg.BackupDir, cfg.BackupKeep)
		if err != nil {
			logger.Fatal().Err(err).Str("dir", cfg.BackupDir).Msg("failed to prepare backup dir")
		}
		app.Archive = archive
	}

	router := httpapi.NewRouter(httpapi.Deps{
		App:             app,
		Hub:             hub,
		Auth:            auth,
		Metrics:         m,
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		StaticDir:       cfg.StaticDir,
	})

	server := infra.NewHTTPServer(cfg, router, hub.Close)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("db", cfg.DBDriver).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close store")
		}
	}
	logger.Info().Msg("server stopped")
}
