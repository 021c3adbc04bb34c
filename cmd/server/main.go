// Package main is the entry point for the to-do API server.
//
// main only resolves configuration, builds the logger and hands both to
// internal/server. Usage:
//
//	server [--config application.yaml]
//
// The config file can also be named by CONFIG_FILE; without either,
// application.properties in the working directory is tried.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/sakif/todolist/internal/config"
	"github.com/sakif/todolist/internal/server"
)

func main() {
	configFile := pflag.StringP("config", "c", "", "path to a .properties or .yaml config file")
	pflag.Parse()

	// The level is only known after the config is resolved, so start at info
	// and adjust in place.
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Resolve(config.Sources{
		Getenv:   os.Getenv,
		File:     configPath(*configFile),
		Defaults: config.DefaultValues(),
		Logger:   logger,
	})
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	logger.Info("configuration loaded",
		slog.String("file", cfg.File),
		slog.String("dbUrl", cfg.StoreURL),
		slog.String("dbUser", cfg.StoreUser),
		slog.Int("port", cfg.ListenPort),
		slog.String("logLevel", cfg.LogLevel.String()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	srv, err := server.New(ctx, cfg, logger, server.Options{})
	cancel()
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// configPath picks the config file: the --config flag, then CONFIG_FILE, then
// the default name.
func configPath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("CONFIG_FILE")); p != "" {
		return p
	}
	return config.DefaultFile
}
