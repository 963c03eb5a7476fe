package migrate

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/database"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/tools/common"
)

func NewRootCommand() *cobra.Command {
	opts := &common.Options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tooling",
	}
	common.BindFlags(cmd, opts)
	cmd.AddCommand(
		newUpCommand(opts),
		newStatusCommand(opts),
		newPlanCommand(opts),
	)
	return cmd
}

func newUpCommand(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			common.Execute(opts, "migrate up", func(ctx context.Context) ([]string, error) {
				cfg, db, err := common.OpenDB(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				defer func() { _ = database.Close(db) }()

				if err := database.Migrate(db.WithContext(ctx)); err != nil {
					return nil, err
				}
				return []string{"schema migration applied", "driver: " + cfg.DBDriver}, nil
			})
			return nil
		},
	}
}

func newStatusCommand(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the schema is current",
		RunE: func(cmd *cobra.Command, args []string) error {
			common.Execute(opts, "migrate status", func(ctx context.Context) ([]string, error) {
				plans, err := loadPlan(ctx, opts.EnvFile)
				if err != nil {
					return nil, err
				}
				pending := 0
				for _, p := range plans {
					if p.Pending() {
						pending++
					}
				}
				if pending > 0 {
					return []string{fmt.Sprintf("%d table(s) behind", pending)}, fmt.Errorf("schema out of date, run migrate up")
				}
				return []string{"database reachable", "schema up to date"}, nil
			})
			return nil
		},
	}
}

func newPlanCommand(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show migration plan (dry-run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			common.Execute(opts, "migrate plan", func(ctx context.Context) ([]string, error) {
				plans, err := loadPlan(ctx, opts.EnvFile)
				if err != nil {
					return nil, err
				}
				details := make([]string, 0, len(plans)+1)
				for _, p := range plans {
					details = append(details, p.String())
				}
				return append(details, "no mutation executed in plan mode"), nil
			})
			return nil
		},
	}
}

func loadPlan(ctx context.Context, envFile string) ([]database.TablePlan, error) {
	_, db, err := common.OpenDB(envFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = database.Close(db) }()
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return database.Plan(db.WithContext(ctx))
}
