package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/piwi3910/TabBox/internal/cache"
	"github.com/piwi3910/TabBox/internal/logger"
	"github.com/piwi3910/TabBox/internal/metrics"
	"github.com/piwi3910/TabBox/internal/project"
	"github.com/piwi3910/TabBox/internal/server"
)

func runServe(args []string, stderr io.Writer) error {
	cfg := server.ConfigFromEnv()

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address (TABBOX_ADDR)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (TABBOX_LOG_LEVEL)")
	fs.BoolVar(&cfg.LogConsole, "log-console", cfg.LogConsole, "human readable logs (TABBOX_LOG_CONSOLE)")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address for the shared cache (TABBOX_REDIS_ADDR)")
	fs.IntVar(&cfg.RedisPool, "redis-pool", cfg.RedisPool, "redis connection pool size (TABBOX_REDIS_POOL)")
	profilesPath := fs.String("profiles", project.DefaultProfilesPath(), "custom machine profiles file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logger.Build(logger.Config{Level: cfg.LogLevel, Console: cfg.LogConsole, Component: "server"}, stderr)
	log.Info().Str("addr", cfg.Addr).Str("version", Version).Msg("starting tabbox")

	if err := project.InstallCustomProfiles(*profilesPath); err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	m := metrics.Init(metrics.Config{Build: metrics.BuildInfo{Version: Version}})
	opts := []cache.Option{cache.WithRecorder(m), cache.WithLogger(&log)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		rs, err := cache.NewRedisStore(pingCtx, cfg.RedisAddr, cache.WithPoolSize(cfg.RedisPool))
		cancel()
		if err != nil {
			return err
		}
		opts = append(opts, cache.WithRedis(rs, cfg.CacheTTL))
		log.Info().Str("redis", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("shared cache enabled")
	}
	c, err := cache.New(cfg.CacheSize, opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	srv, err := server.New(cfg, &log, c, m)
	if err != nil {
		return err
	}
	if err := srv.Run(ctx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

