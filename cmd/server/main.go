package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taskboxhq/taskbox/internal/api"
	"github.com/taskboxhq/taskbox/internal/app"
	"github.com/taskboxhq/taskbox/internal/app/maintenance"
	"github.com/taskboxhq/taskbox/internal/auth"
	"github.com/taskboxhq/taskbox/internal/cache"
	"github.com/taskboxhq/taskbox/internal/database"
	"github.com/taskboxhq/taskbox/internal/tasks"
	"github.com/taskboxhq/taskbox/pkg/logger"
	"github.com/taskboxhq/taskbox/pkg/mail"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskbox: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	var paths []string
	if *configPath != "" {
		paths = append(paths, *configPath)
	}

	cfg, err := app.LoadConfig(paths...)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	log := logger.WithModule("server")

	db, err := database.Open(app.DatabaseConfigFromApp(cfg))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	var store cache.Store
	var pruner maintenance.ExpiredPruner
	if cfg.Cache.Redis.Enabled {
		redisStore, err := cache.NewRedisStore(app.RedisConfigFromApp(cfg))
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = redisStore.Close() }()
		store = redisStore
		log.Info("using redis cache store", zap.String("address", cfg.Cache.Redis.Address))
	} else {
		dbStore := cache.NewDatabaseStore(db)
		store = dbStore
		pruner = dbStore
		log.Info("using database cache store")
	}

	jwtService, err := auth.NewJWTService(app.JWTConfigFromApp(cfg))
	if err != nil {
		return fmt.Errorf("configure jwt: %w", err)
	}

	mailer, err := mail.NewSMTPMailer(app.SMTPSettingsFromApp(cfg))
	if err != nil {
		return fmt.Errorf("configure mailer: %w", err)
	}

	dispatcher := tasks.NewDispatcher(0)

	cleaner := maintenance.NewCleaner(db, pruner, cfg.Maintenance.Schedule, cfg.Maintenance.ActivityRetention)
	if err := cleaner.Start(); err != nil {
		return fmt.Errorf("start maintenance cleaner: %w", err)
	}
	defer cleaner.Stop()

	router := api.NewRouter(api.Config{
		DB:         db,
		Store:      store,
		JWT:        jwtService,
		Mailer:     mailer,
		Dispatcher: dispatcher,

		OTPCodeLength: cfg.OTP.CodeLength,
		OTPTTL:        cfg.OTP.TTL,
		ExposeOTPCode: cfg.OTP.ExposeCode,

		RateLimitEnabled:  cfg.Server.RateLimit.Enabled,
		RateLimitRequests: cfg.Server.RateLimit.Requests,
		RateLimitWindow:   cfg.Server.RateLimit.Window,

		MetricsEnabled:  cfg.Monitoring.Prometheus.Enabled,
		MetricsEndpoint: cfg.Monitoring.Prometheus.Endpoint,
		HealthEnabled:   cfg.Monitoring.Health.Enabled,

		Debug:   cfg.Server.Debug,
		Version: version,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.Int("port", cfg.Server.Port), zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := dispatcher.Drain(shutdownCtx); err != nil {
		log.Warn("deferred tasks did not drain in time", zap.Error(err))
	}

	return nil
}
