// Package config resolves the runtime settings of the service.
//
// Every setting is looked up in three places, highest priority first:
//
//  1. an environment variable, if set and not blank
//  2. a key in the optional config file, if present and not blank
//  3. a hard-coded default
//
// The config file is either key=value properties (application.properties,
// parsed with godotenv) or YAML (.yaml/.yml, nested keys flattened with
// dots). Both use the same dotted keys, e.g. db.url or server.port.
//
// Resolve returns an explicit Config value. Nothing here is global: main
// resolves once and passes the result down.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sakif/todolist/internal/apperror"
)

// DefaultFile is the config file looked for when no path is given.
const DefaultFile = "application.properties"

// Setting names one value in both sources.
type Setting struct {
	Env string // environment variable
	Key string // config file key
}

var (
	StoreURL      = Setting{Env: "DB_URL", Key: "db.url"}
	StoreUser     = Setting{Env: "DB_USER", Key: "db.username"}
	StorePassword = Setting{Env: "DB_PASSWORD", Key: "db.password"}
	ListenPort    = Setting{Env: "SERVER_PORT", Key: "server.port"}
	LogLevel      = Setting{Env: "LOG_LEVEL", Key: "log.level"}
	CORSOrigins   = Setting{Env: "CORS_ALLOWED_ORIGINS", Key: "server.cors.origins"}
)

// Config is the resolved runtime configuration.
type Config struct {
	StoreURL      string
	StoreUser     string
	StorePassword string
	ListenPort    int

	LogLevel           slog.Level
	CORSAllowedOrigins []string

	// File is the config file that was actually loaded, or "" if none was.
	File string
}

// Defaults are the lowest-priority values. They exist for local development
// only; a real deployment overrides the three store settings.
type Defaults struct {
	StoreURL      string
	StoreUser     string
	StorePassword string
	ListenPort    int
	LogLevel      string
	CORSOrigins   string
}

// DefaultValues returns the built-in defaults: a local sqlite file, a generic
// admin account and port 8080.
func DefaultValues() Defaults {
	return Defaults{
		StoreURL:      "sqlite:data/todolist.db",
		StoreUser:     "root",
		StorePassword: "password",
		ListenPort:    8080,
		LogLevel:      "info",
		CORSOrigins:   "*",
	}
}

// Sources are the inputs to Resolve.
type Sources struct {
	// Getenv reads environment variables; nil means os.Getenv.
	Getenv func(string) string
	// File is the config file path; "" skips the file layer.
	File     string
	Defaults Defaults
	Logger   *slog.Logger
}

// Resolve merges the sources into a Config.
//
// A missing config file and an unparsable port are logged and fall back to
// lower-priority values. A config file that exists but cannot be parsed, or
// a store setting that is still empty after merging, is an
// apperror.ErrConfiguration and the process must not start.
func Resolve(src Sources) (Config, error) {
	getenv := src.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	logger := src.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg Config

	file := map[string]string{}
	if src.File != "" {
		values, err := LoadFile(src.File)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("config file not found, using environment and defaults",
				slog.String("file", src.File),
			)
		case err != nil:
			return Config{}, apperror.Configuration(fmt.Sprintf("reading config file %s: %v", src.File, err))
		default:
			file = values
			cfg.File = src.File
		}
	}

	lookup := func(s Setting, def string) string {
		if v := strings.TrimSpace(getenv(s.Env)); v != "" {
			return v
		}
		if v := strings.TrimSpace(file[s.Key]); v != "" {
			return v
		}
		return def
	}

	cfg.StoreURL = lookup(StoreURL, src.Defaults.StoreURL)
	cfg.StoreUser = lookup(StoreUser, src.Defaults.StoreUser)
	cfg.StorePassword = lookup(StorePassword, src.Defaults.StorePassword)
	cfg.ListenPort = parsePort(lookup(ListenPort, ""), src.Defaults.ListenPort, logger)
	cfg.LogLevel = parseLevel(lookup(LogLevel, src.Defaults.LogLevel), logger)
	cfg.CORSAllowedOrigins = splitList(lookup(CORSOrigins, src.Defaults.CORSOrigins))

	var missing []string
	if cfg.StoreURL == "" {
		missing = append(missing, StoreURL.Env)
	}
	if cfg.StoreUser == "" {
		missing = append(missing, StoreUser.Env)
	}
	if cfg.StorePassword == "" {
		missing = append(missing, StorePassword.Env)
	}
	if len(missing) > 0 {
		return Config{}, apperror.Configuration(
			"database connection parameters not set: " + strings.Join(missing, ", "))
	}

	return cfg, nil
}

func parsePort(raw string, def int, logger *slog.Logger) int {
	if raw == "" {
		return def
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		logger.Warn("invalid server port, using default",
			slog.String("value", raw),
			slog.Int("default", def),
		)
		return def
	}
	return port
}

func parseLevel(raw string, logger *slog.Logger) slog.Level {
	var level slog.Level
	if raw == "" {
		return slog.LevelInfo
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		logger.Warn("invalid log level, using info", slog.String("value", raw))
		return slog.LevelInfo
	}
	return level
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadFile reads a config file into a flat map of dotted keys. The format is
// chosen by extension: .yaml/.yml is YAML, anything else is properties.
func LoadFile(path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return godotenv.Read(path)
	}
}

func loadYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	out := make(map[string]string)
	flatten("", tree, out)
	return out, nil
}

// flatten turns {db: {url: x}} into {"db.url": "x"}. Lists become
// comma-separated strings.
func flatten(prefix string, node map[string]any, out map[string]string) {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := node[k].(type) {
		case map[string]any:
			flatten(key, v, out)
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			out[key] = strings.Join(parts, ",")
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(v)
		}
	}
}
