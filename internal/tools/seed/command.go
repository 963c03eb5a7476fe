package seed

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/database"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/security"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/tools/common"
)

type options struct {
	common.Options
	demoName     string
	demoEmail    string
	demoPassword string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed tooling"}
	common.BindFlags(cmd, &opts.Options)
	cmd.PersistentFlags().StringVar(&opts.demoName, "demo-name", "Demo Cook", "display name of the demo user")
	cmd.PersistentFlags().StringVar(&opts.demoEmail, "demo-email", "demo@recipes.local", "email of the demo user; empty skips the user")
	cmd.PersistentFlags().StringVar(&opts.demoPassword, "demo-password", "demo-password", "password of the demo user")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Insert the demo user and default categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			common.Execute(&opts.Options, "seed apply", func(ctx context.Context) ([]string, error) {
				cfg, db, err := common.OpenDB(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				defer func() { _ = database.Close(db) }()

				seedOpts := database.SeedOptions{DemoName: opts.demoName, DemoEmail: opts.demoEmail}
				if opts.demoEmail != "" {
					hash, err := security.NewPasswordHasher(cfg.BcryptCost).Hash(opts.demoPassword)
					if err != nil {
						return nil, err
					}
					seedOpts.DemoPasswordHash = hash
				}
				report, err := database.Seed(ctx, db, seedOpts)
				if err != nil {
					return nil, err
				}
				if report.Noop {
					return []string{"nothing to seed"}, nil
				}
				details := []string{fmt.Sprintf("categories created: %d", report.CreatedCategories)}
				if report.CreatedUser {
					details = append(details, "demo user created: "+opts.demoEmail)
				}
				return details, nil
			})
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			common.Execute(&opts.Options, "seed dry-run", func(ctx context.Context) ([]string, error) {
				_, db, err := common.OpenDB(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				defer func() { _ = database.Close(db) }()

				details, err := database.SeedPreview(ctx, db, database.SeedOptions{DemoEmail: opts.demoEmail})
				if err != nil {
					return nil, err
				}
				if len(details) == 0 {
					details = []string{"nothing to seed"}
				}
				return details, nil
			})
			return nil
		},
	}
}
