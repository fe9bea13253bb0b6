package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vet-practice-api/internal/adapters/auth/jwks"
	"vet-practice-api/internal/adapters/messaging/rabbit"
	pg "vet-practice-api/internal/adapters/storage/postgres"
	"vet-practice-api/internal/adapters/storage/redisstore"
	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/platform/config"
	"vet-practice-api/internal/platform/httpclient"
	"vet-practice-api/internal/platform/logger"
	"vet-practice-api/internal/router"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	if z, ok := log.(*logger.ZapLogger); ok {
		defer func() { _ = z.Sync() }()
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", map[string]any{"err": err})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := router.Options{
		Log: log,
		Vets: vets.Options{
			MasterAdminEmails: cfg.MasterAdminEmails,
			AutoApprove:       cfg.AutoApproveVets,
		},
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}

	// Sin DB_DSN corre in-memory (dev).
	if cfg.DBDSN != "" {
		if cfg.DBMigrate {
			if err := pg.Migrate(cfg.DBDSN); err != nil {
				return err
			}
		}
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Store = pg.NewStore(db)
		log.Info("using postgres store", nil)
	} else {
		log.Warn("DB_DSN not set, using in-memory store", nil)
	}

	// Sin JWKS_URL queda en modo dev: X-Debug-User-ID.
	if cfg.JWKSURL != "" {
		keys := jwks.NewCache(cfg.JWKSURL, cfg.JWKSTTL, httpclient.New(httpclient.DefaultTimeout), log)
		if err := keys.Refresh(ctx); err != nil {
			log.Warn("initial jwks fetch failed, will retry on demand", map[string]any{"err": err})
		}
		opts.AuthVerifier = jwks.NewVerifier(keys, jwks.Config{
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Leeway:   30 * time.Second,
		})
	} else {
		log.Warn("JWKS_URL not set, dev auth via X-Debug-User-ID", nil)
	}

	if cfg.RedisAddr != "" {
		rdb, err := redisstore.Open(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn("redis unavailable, rate limiting disabled", map[string]any{"err": err})
		} else {
			defer rdb.Close()
			opts.RateLimiter = rdb
		}
	}

	if cfg.AMQPURL != "" {
		pub, err := rabbit.NewPublisher(rabbit.Config{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.AMQPExchange,
			RoutingKey: cfg.AMQPRoutingKey,
		})
		if err != nil {
			log.Warn("amqp unavailable, audit events stay local", map[string]any{"err": err})
		} else {
			defer pub.Close()
			opts.Publisher = pub
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.HTTPAddr, "log_level": logger.ParseLevel(cfg.LogLevel).String()})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", map[string]any{"timeout": cfg.ShutdownTimeout.String()})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
