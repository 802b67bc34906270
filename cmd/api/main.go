// Command api runs the FixACareer authentication service.
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

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/fixacareer/fixauth"
	"github.com/fixacareer/fixauth/httpapi"
	"github.com/fixacareer/fixauth/internal/config"
	"github.com/fixacareer/fixauth/mail"
	"github.com/fixacareer/fixauth/pgstore"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := pgstore.Open(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := pgstore.Migrate(db); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer rdb.Close()

	var mailer fixauth.Mailer
	if cfg.SMTPHost != "" {
		mailer, err = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			AppURL:   cfg.AppURL,
		}, logger)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("no smtp host configured, emails will be logged only")
		mailer = &mail.LogMailer{Logger: logger}
	}

	engineCfg := fixauth.DefaultConfig()
	engineCfg.JWT.AccessSecret = cfg.AccessSecret
	engineCfg.JWT.RefreshSecret = cfg.RefreshSecret
	engineCfg.JWT.AccessTTL = cfg.AccessTTL
	engineCfg.JWT.AdminRefreshTTL = cfg.AdminRefresh
	engineCfg.JWT.UserRefreshTTL = cfg.UserRefresh
	engineCfg.JWT.Issuer = cfg.JWTIssuer
	engineCfg.Seed.Key = cfg.SeedKey

	engine, err := fixauth.New().
		WithConfig(engineCfg).
		WithRedis(rdb).
		WithAdminStore(pgstore.NewAdminStore(db)).
		WithUserStore(pgstore.NewUserStore(db)).
		WithMailer(mailer).
		WithAuditSink(fixauth.NewJSONWriterSink(os.Stdout)).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	api := httpapi.New(engine, httpapi.Options{
		Logger:    logger,
		RateLimit: rate.Limit(cfg.RateLimitPerSecond),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
