package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"modelgw/internal/backend"
	"modelgw/internal/config"
	"modelgw/internal/gateway"
	"modelgw/internal/httpapi"
	"modelgw/internal/queue"
	"modelgw/internal/registry"
)

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ms(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Millisecond
}

func main() {
	// Flags with environment variable defaults
	addr := flag.String("addr", envDefault("MODELGW_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	configPath := flag.String("config", os.Getenv("MODELGW_CONFIG"), "Path to a yaml/json/toml config file")
	redisAddr := flag.String("redis-addr", os.Getenv("MODELGW_REDIS_ADDR"), "Redis address; empty runs the in-memory queue store")
	logLevel := flag.String("log-level", envDefault("MODELGW_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	models := flag.String("models", os.Getenv("MODELGW_MODELS"), "Comma-separated model ids to process (default: derived from configured instances)")
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()

	var cfg config.Config
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
	}
	// Flags take precedence over the config file for the shared fields.
	if cfg.Addr == "" || *addr != ":8080" {
		cfg.Addr = *addr
	}
	if *redisAddr != "" {
		cfg.RedisAddr = *redisAddr
	}
	if *models != "" {
		cfg.Models = splitCSV(*models)
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store queue.Store
	if cfg.RedisAddr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{cfg.RedisAddr}})
		rs := queue.NewRedisStore(client)
		pingCtx, cancel := context.WithTimeout(baseCtx, 5*time.Second)
		if err := rs.Ping(pingCtx); err != nil {
			cancel()
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
		}
		cancel()
		defer client.Close()
		store = rs
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis queue store")
	} else {
		store = queue.NewMemoryStore()
		log.Info().Msg("using in-memory queue store")
	}

	reg := registry.New()
	reg.Initialize(cfg.Instances)

	be := backend.NewHTTPBackend(&http.Client{Timeout: ms(cfg.RequestTimeoutMs, 30*time.Second)}, log)

	gw := gateway.New(reg, store, be, log, gateway.Config{
		TickInterval:   ms(cfg.TickMs, 0),
		RequeueDelay:   ms(cfg.RequeueDelayMs, 0),
		RetryBackoff:   ms(cfg.RetryBackoffMs, 0),
		ResultTTL:      time.Duration(cfg.ResultTTLSec) * time.Second,
		PollInterval:   ms(cfg.PollIntervalMs, 0),
		RequestTimeout: ms(cfg.RequestTimeoutMs, 0),
		MaxRetries:     cfg.MaxRetries,
	})

	hc := registry.NewHealthChecker(reg, be, time.Duration(cfg.HealthIntervalSec)*time.Second, log)
	go hc.Run(baseCtx)

	for _, m := range cfg.ModelIDs() {
		gw.StartModel(m)
		log.Info().Str("model", m).Msg("processing loop started")
	}

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(baseCtx)
	mux := httpapi.NewMux(gw)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Int("instances", len(cfg.Instances)).Msg("modelgw listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	<-baseCtx.Done()
	stop()
	gw.StopAll()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
}
