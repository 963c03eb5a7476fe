package mailer

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/config"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/mail"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/tools/common"
)

type options struct {
	common.Options
	durable string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "mailer", Short: "Outbound mail queue worker"}
	common.BindFlags(cmd, &opts.Options)
	cmd.PersistentFlags().StringVar(&opts.durable, "durable", "mailer", "JetStream durable consumer name")
	cmd.AddCommand(newRunCommand(opts), newCheckCommand(opts))
	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Deliver queued mail over SMTP until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := common.LoadConfig(opts.EnvFile)
			if err != nil {
				return err
			}
			if cfg.MailHost == "" {
				return errors.New("MAIL_HOST is required to run the mailer")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := observability.InitLogger(cfg, nil).With("component", "mailer")
			bus, err := connect(cfg)
			if err != nil {
				return err
			}
			defer bus.Close()

			sender, err := mail.NewSMTPSender(smtpConfig(cfg))
			if err != nil {
				return err
			}
			return mail.NewWorker(sender, logger).Run(ctx, bus, cfg.MailQueueSubject, opts.durable)
		},
	}
}

func newCheckCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the queue is reachable and the stream exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			common.Execute(&opts.Options, "mailer check", func(ctx context.Context) ([]string, error) {
				cfg, err := common.LoadConfig(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				bus, err := connect(cfg)
				if err != nil {
					return nil, err
				}
				defer bus.Close()
				if err := bus.Ping(); err != nil {
					return nil, err
				}
				return []string{
					"nats reachable: " + cfg.NATSURL,
					fmt.Sprintf("stream %s bound to %s", cfg.MailQueueStream, cfg.MailQueueSubject),
				}, nil
			})
			return nil
		},
	}
}

func connect(cfg *config.Config) (*mail.Bus, error) {
	bus, err := mail.NewBus(cfg.NATSURL, nats.Name(cfg.AppName+"-mailer"))
	if err != nil {
		return nil, err
	}
	if err := bus.EnsureStream(cfg.MailQueueStream, cfg.MailQueueSubject); err != nil {
		bus.Close()
		return nil, err
	}
	return bus, nil
}

func smtpConfig(cfg *config.Config) mail.SMTPConfig {
	return mail.SMTPConfig{
		Host:     cfg.MailHost,
		Port:     cfg.MailPort,
		User:     cfg.MailUser,
		Password: cfg.MailPassword,
		Secure:   cfg.MailSecure,
		Timeout:  cfg.MailSendTimeout,
	}
}
