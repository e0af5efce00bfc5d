// Command sqlbridge serves SQL query and statement tools over HTTP.
//
//	sqlbridge                                  in-memory SQLite on :8080
//	sqlbridge --db data/app.db                 SQLite file
//	sqlbridge --db postgres://u:p@host/db      PostgreSQL
//	sqlbridge --db 'mysql://u:p@tcp(host)/db'  MySQL
//	sqlbridge --config sqlbridge.yaml --log-file logs/sqlbridge.log
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/koustreak/sqlbridge/internal/config"
	"github.com/koustreak/sqlbridge/internal/database"
	"github.com/koustreak/sqlbridge/internal/database/mysql"
	"github.com/koustreak/sqlbridge/internal/database/postgres"
	"github.com/koustreak/sqlbridge/internal/database/sqlite"
	"github.com/koustreak/sqlbridge/internal/errs"
	"github.com/koustreak/sqlbridge/internal/logger"
	"github.com/koustreak/sqlbridge/internal/server"
	"github.com/koustreak/sqlbridge/internal/tools"
)

func main() {
	cfg, err := config.Parse(filepath.Base(os.Args[0]), os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlbridge: %v\n", err)
		os.Exit(2)
	}

	out, closeLog, err := logOutput(cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlbridge: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	log := logger.New(cfg.Log.Logger(out))
	logger.SetGlobal(log)

	if err := run(cfg, log); err != nil {
		log.ErrorWith("sqlbridge stopped", err, map[string]interface{}{
			"kind": errs.KindOf(err).String(),
		})
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	dbCfg, err := cfg.Database.Resolve()
	if err != nil {
		return err
	}
	log.InfoWith("opening database", map[string]interface{}{
		"driver": string(dbCfg.Driver),
		"target": redact(dbCfg),
	})

	exec, err := openExecutor(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := exec.Close(); err != nil {
			log.WarnWith("failed to close database", err, nil)
		}
	}()

	srv := server.New(cfg.Server.HTTP(), tools.NewRouter(exec), exec, log)
	return srv.Run(ctx)
}

// openExecutor opens the engine named by cfg.Driver.
func openExecutor(ctx context.Context, cfg *database.Config) (*database.Executor, error) {
	switch cfg.Driver {
	case database.DriverSQLite:
		return sqlite.New(ctx, cfg)
	case database.DriverPostgres:
		return postgres.New(ctx, cfg)
	case database.DriverMySQL:
		return mysql.New(ctx, cfg)
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unsupported driver: %s", cfg.Driver)
	}
}

// redact hides credentials in network targets.
func redact(cfg *database.Config) string {
	if cfg.Driver == database.DriverSQLite {
		return cfg.DSN
	}
	return string(cfg.Driver) + "://…"
}

// logOutput returns the log destination: the named file opened for append,
// or stderr.
func logOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to create log directory", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to open log file", err)
	}
	return f, func() { _ = f.Close() }, nil
}
