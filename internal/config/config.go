// Package config loads sqlbridge settings.
//
// Precedence, lowest first: built-in defaults, the YAML file named by
// --config, then command-line flags that were set explicitly.
//
//	database:
//	  target: ":memory:"
//	log:
//	  level: info
//	  format: json
//	server:
//	  addr: ":8080"
package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/sqlbridge/internal/database"
	"github.com/koustreak/sqlbridge/internal/errs"
	"github.com/koustreak/sqlbridge/internal/logger"
	"github.com/koustreak/sqlbridge/internal/server"
)

// Config is the full process configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
}

type DatabaseConfig struct {
	// Target is a SQLite path, ":memory:", a "file:" URI, or a
	// postgres:// / mysql:// URL.
	Target         string        `yaml:"target"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File, when set, receives log lines instead of stderr.
	File string `yaml:"file"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in settings: an in-memory SQLite database, JSON
// logs at info, and the HTTP server on :8080.
func Default() *Config {
	db := database.DefaultConfig()
	srv := server.DefaultConfig()
	return &Config{
		Database: DatabaseConfig{Target: db.DSN, ConnectTimeout: db.ConnectTimeout},
		Log:      LogConfig{Level: "info", Format: "json"},
		Server: ServerConfig{
			Addr:            srv.Addr,
			ReadTimeout:     srv.ReadTimeout,
			WriteTimeout:    srv.WriteTimeout,
			ShutdownTimeout: srv.ShutdownTimeout,
		},
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are
// rejected. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read config file", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse config file", err)
	}
	return cfg, nil
}

// Parse builds the configuration from command-line args (without the
// program name). Only flags present in args override the file.
func Parse(name string, args []string) (*Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	def := Default()
	path := fs.String("config", "", "path to a YAML config file")
	target := fs.String("db", def.Database.Target, "database target: SQLite path, :memory:, postgres://… or mysql://…")
	level := fs.String("log-level", def.Log.Level, "log level: trace, debug, info, warn, error, fatal")
	format := fs.String("log-format", def.Log.Format, "log format: json or console")
	file := fs.String("log-file", def.Log.File, "append logs to this file instead of stderr")
	addr := fs.String("addr", def.Server.Addr, "HTTP listen address")

	if err := fs.Parse(args); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid command line", err)
	}
	if fs.NArg() > 0 {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unexpected argument: %s", fs.Arg(0))
	}

	cfg, err := Load(*path)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.Database.Target = *target
		case "log-level":
			cfg.Log.Level = *level
		case "log-format":
			cfg.Log.Format = *format
		case "log-file":
			cfg.Log.File = *file
		case "addr":
			cfg.Server.Addr = *addr
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := c.Database.Resolve(); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid log level", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "invalid log format %q: want json or console", c.Log.Format)
	}
	if c.Server.Addr == "" {
		return errs.New(errs.ErrKindInvalidInput, "server address must not be empty")
	}
	return nil
}

// Resolve turns the target into the executor's connection settings.
func (d DatabaseConfig) Resolve() (*database.Config, error) {
	cfg, err := database.ParseTarget(d.Target)
	if err != nil {
		return nil, err
	}
	if d.ConnectTimeout > 0 {
		cfg.ConnectTimeout = d.ConnectTimeout
	}
	return cfg, nil
}

// Logger returns the logger settings, writing to out.
func (l LogConfig) Logger(out io.Writer) *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Output = out
	return cfg
}

// HTTP returns the server settings.
func (s ServerConfig) HTTP() *server.Config {
	return &server.Config{
		Addr:            s.Addr,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		ShutdownTimeout: s.ShutdownTimeout,
	}
}
