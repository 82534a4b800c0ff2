package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

// goose usa estado global: una migración a la vez.
var gooseMu sync.Mutex

// gooseLogger adapta zerolog a la interfaz de logging de goose.
type gooseLogger struct {
	zl zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.zl.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.zl.Fatal().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func withGoose(pool *pgxpool.Pool, zl zerolog.Logger, fn func(db *sql.DB) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{zl: zl})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return fn(db)
}

// MigrateUp aplica las migraciones pendientes embebidas en el binario.
func MigrateUp(ctx context.Context, pool *pgxpool.Pool, zl zerolog.Logger) error {
	return withGoose(pool, zl, func(db *sql.DB) error {
		if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		return nil
	})
}

// MigrateDown revierte la última migración aplicada.
func MigrateDown(ctx context.Context, pool *pgxpool.Pool, zl zerolog.Logger) error {
	return withGoose(pool, zl, func(db *sql.DB) error {
		if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
		return nil
	})
}

// MigrateStatus escribe en el log el estado de cada migración.
func MigrateStatus(ctx context.Context, pool *pgxpool.Pool, zl zerolog.Logger) error {
	return withGoose(pool, zl, func(db *sql.DB) error {
		if err := goose.StatusContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("goose status: %w", err)
		}
		return nil
	})
}
