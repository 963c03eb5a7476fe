package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

type VerificationNotification struct {
	UserID          string
	Name            string
	Email           string
	Token           string
	VerificationURL string
}

type EmailVerificationNotifier interface {
	SendEmailVerification(ctx context.Context, notification VerificationNotification) error
}

type PasswordResetNotification struct {
	UserID    string
	Name      string
	Email     string
	Token     string
	ExpiresAt time.Time
	ResetURL  string
}

type PasswordResetNotifier interface {
	SendPasswordReset(ctx context.Context, notification PasswordResetNotification) error
}

// AccountNotifier sends both account emails.
type AccountNotifier interface {
	EmailVerificationNotifier
	PasswordResetNotifier
}

// DevEmailVerificationNotifier logs links instead of sending mail.
type DevEmailVerificationNotifier struct {
	logger *slog.Logger
}

func NewDevEmailVerificationNotifier(logger *slog.Logger) *DevEmailVerificationNotifier {
	return &DevEmailVerificationNotifier{logger: logger}
}

func (n *DevEmailVerificationNotifier) SendEmailVerification(ctx context.Context, notification VerificationNotification) error {
	n.logger.InfoContext(ctx, "account verification link issued",
		"user_id", notification.UserID,
		"email", notification.Email,
		"verification", notification.VerificationURL,
	)
	return nil
}

func (n *DevEmailVerificationNotifier) SendPasswordReset(ctx context.Context, notification PasswordResetNotification) error {
	n.logger.InfoContext(ctx, "password reset link issued",
		"user_id", notification.UserID,
		"email", notification.Email,
		"expires_at", notification.ExpiresAt,
		"reset", notification.ResetURL,
	)
	return nil
}

// AsyncNotifier sends in the background so callers never wait on mail
// delivery. Failures are logged and counted, not returned.
type AsyncNotifier struct {
	next    AccountNotifier
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsyncNotifier(next AccountNotifier, logger *slog.Logger, timeout time.Duration) *AsyncNotifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AsyncNotifier{next: next, logger: logger, timeout: timeout}
}

func (n *AsyncNotifier) SendEmailVerification(ctx context.Context, notification VerificationNotification) error {
	n.dispatch(ctx, "verification", func(ctx context.Context) error {
		return n.next.SendEmailVerification(ctx, notification)
	})
	return nil
}

func (n *AsyncNotifier) SendPasswordReset(ctx context.Context, notification PasswordResetNotification) error {
	n.dispatch(ctx, "password_reset", func(ctx context.Context) error {
		return n.next.SendPasswordReset(ctx, notification)
	})
	return nil
}

func (n *AsyncNotifier) dispatch(parent context.Context, kind string, send func(context.Context) error) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), n.timeout)
		defer cancel()
		if err := send(ctx); err != nil {
			n.logger.ErrorContext(ctx, "account email not sent", "kind", kind, "error", err)
			observability.RecordMailDelivery(ctx, kind, "async", "failed")
			return
		}
		observability.RecordMailDelivery(ctx, kind, "async", "dispatched")
	}()
}

// Wait blocks until in-flight sends finish or ctx is done.
func (n *AsyncNotifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
