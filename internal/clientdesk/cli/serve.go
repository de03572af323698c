package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/app"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			return application.Run(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			dsn, source, err := app.ResolveDatabaseURL()
			if err != nil {
				return err
			}
			cfg.DatabaseURL, cfg.DatabaseSource = dsn, source

			st, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			if err := st.ApplyMigrations(); err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}

			driver, _ := app.DriverFor(dsn)
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Migrations applied (%s, url from %s)\n", driver, source)
			return nil
		},
	}
}
