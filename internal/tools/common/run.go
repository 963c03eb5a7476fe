package common

import (
	"context"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/config"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/database"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/tools/ui"
)

// ExitFailure is the process status for a failed tool action.
const ExitFailure = 3

type Options struct {
	EnvFile string
	Timeout time.Duration
	CI      bool
}

// Execute runs fn behind the terminal UI, or directly with JSON output when
// CI mode is on. A failure exits the process with ExitFailure.
func Execute(opts *Options, title string, fn func(context.Context) ([]string, error)) {
	var err error
	if opts.CI {
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		var details []string
		details, err = fn(ctx)
		cancel()
		PrintCIResult(err == nil, title, details, err)
	} else {
		_, err = ui.Run(title, opts.Timeout, fn)
	}
	if err != nil {
		os.Exit(ExitFailure)
	}
}

func LoadConfig(envFile string) (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	return config.Load()
}

// OpenDB loads configuration and opens the database. The caller closes it
// with database.Close.
func OpenDB(envFile string) (*config.Config, *gorm.DB, error) {
	cfg, err := LoadConfig(envFile)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
