package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type migrateFunc func(ctx context.Context, pool *pgxpool.Pool, zl zerolog.Logger) error

func main() {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Migraciones del esquema de categorías (goose)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	var timeout time.Duration
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "tiempo máximo de la operación")

	root.AddCommand(
		newCommand("up", "Aplica las migraciones pendientes", postgres.MigrateUp, &timeout),
		newCommand("down", "Revierte la última migración", postgres.MigrateDown, &timeout),
		newCommand("status", "Muestra el estado de las migraciones", postgres.MigrateStatus, &timeout),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func newCommand(use, short string, run migrateFunc, timeout *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})

			ctx, cancel := context.WithTimeout(cmd.Context(), *timeout)
			defer cancel()

			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				return fmt.Errorf("conexión a PostgreSQL: %w", err)
			}
			defer pool.Close()

			if err := run(ctx, pool, log.Component("migrate")); err != nil {
				return err
			}
			log.Info().Str("command", use).Msg("migraciones: listo")
			return nil
		},
	}
}
