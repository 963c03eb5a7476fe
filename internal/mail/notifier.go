package mail

import (
	"context"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/service"
)

// Notifier renders account emails and hands them to a Sender.
type Notifier struct {
	renderer *Renderer
	sender   Sender
	channel  string
}

func NewNotifier(renderer *Renderer, sender Sender, channel string) *Notifier {
	return &Notifier{renderer: renderer, sender: sender, channel: channel}
}

func (n *Notifier) SendEmailVerification(ctx context.Context, v service.VerificationNotification) error {
	msg, err := n.renderer.Verification(v.Name, v.Email, v.VerificationURL)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func (n *Notifier) SendPasswordReset(ctx context.Context, p service.PasswordResetNotification) error {
	msg, err := n.renderer.PasswordReset(p.Name, p.Email, p.ResetURL, p.ExpiresAt)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func (n *Notifier) send(ctx context.Context, msg Message) error {
	if err := n.sender.Send(ctx, msg); err != nil {
		observability.RecordMailDelivery(ctx, string(msg.Kind), n.channel, "error")
		return err
	}
	observability.RecordMailDelivery(ctx, string(msg.Kind), n.channel, "sent")
	return nil
}
