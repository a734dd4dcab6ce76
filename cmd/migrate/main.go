package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	root := &cli.Command{
		Name:  "migrate",
		Usage: "apply the embedded database schema",
		Commands: []*cli.Command{
			{Name: "up", Usage: "apply all pending migrations", Action: run("up")},
			{Name: "down", Usage: "roll back every migration", Action: run("down")},
			{Name: "version", Usage: "print the applied version", Action: run("version")},
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(action string) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger, err := bootstrap.NewLogger(cfg.Environment, cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		return runMigration(action, cfg.DSN(), logger.Named("migrate"))
	}
}

func runMigration(action, dsn string, logger *zap.Logger) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migration applied")
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}

	logger.Info("migration completed", zap.String("action", action))
	return nil
}
