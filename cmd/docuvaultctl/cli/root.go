// Package cli implements the docuvaultctl operator commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/docuvault/docuvault/internal/app"
	"github.com/docuvault/docuvault/internal/catalog"
	"github.com/docuvault/docuvault/internal/platform/db"
	"github.com/docuvault/docuvault/internal/provisioning"
	"github.com/docuvault/docuvault/internal/tenants"
)

var rootCmd = &cobra.Command{
	Use:           "docuvaultctl",
	Short:         "Operator tooling for the docuvault platform",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(adminsCmd)
}

// env holds the shared dependencies each command wires up once connected.
type env struct {
	pool         *pgxpool.Pool
	logger       *slog.Logger
	tenants      *tenants.Repository
	provisioning *provisioning.Service
}

func connect(ctx context.Context) (*env, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	store := provisioning.NewPostgresStore(pool, logger)
	resolver := catalog.NewResolver(catalog.NewRepository(pool), logger)

	return &env{
		pool:         pool,
		logger:       logger,
		tenants:      tenants.NewRepository(pool),
		provisioning: provisioning.NewService(store, resolver, logger, cfg.AdminPasswordLength),
	}, nil
}

func (e *env) close() {
	e.pool.Close()
}
