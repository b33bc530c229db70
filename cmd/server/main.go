package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"retailpos/backend/internal/cache"
	"retailpos/backend/internal/config"
	"retailpos/backend/internal/events"
	"retailpos/backend/internal/httpapi"
	"retailpos/backend/internal/metrics"
	"retailpos/backend/internal/service"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/store/memory"
	pgstore "retailpos/backend/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid security configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var st store.Store
	closers := make([]func() error, 0, 3)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback")
		}
		if cfg.DatabaseAutoMigrate {
			if err := pg.Migrate(ctx); err != nil {
				log.Fatal().Err(err).Msg("failed to apply schema")
			}
		}
		st = pg
		closers = append(closers, pg.Close)
		log.Info().Msg("store: postgres")
	} else {
		st = memory.NewSeededAt(cfg.DefaultLocationID)
		log.Info().Str("location_id", cfg.DefaultLocationID).Msg("store: in-memory")
	}

	m := metrics.New()
	opts := []service.Option{service.WithMetrics(m)}

	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisDashboardCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, dashboard cache disabled")
			_ = redisCache.Close()
		} else {
			opts = append(opts, service.WithDashboardCache(redisCache, cfg.DashboardCacheTTL()))
			closers = append(closers, redisCache.Close)
			log.Info().Str("addr", cfg.RedisAddr).Msg("dashboard cache: redis")
		}
	}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher := events.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		opts = append(opts, service.WithPublisher(publisher))
		closers = append(closers, publisher.Close)
		log.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaTopic).Msg("events: kafka")
	}

	svc := service.New(st, opts...)
	api := httpapi.New(svc, httpapi.NewAuthenticator(cfg.AuthSecret), m)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Address()).Str("env", cfg.Env).Msg("retail backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("close error")
		}
	}

	log.Info().Msg("server stopped")
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.KafkaBrokers != "" && cfg.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC must be set when KAFKA_BROKERS is configured")
	}
	return nil
}
