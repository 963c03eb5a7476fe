package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

// Publisher is the subset of the JetStream bus used by the queue sender.
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// Bus wraps a NATS JetStream connection used as the outbound mail queue.
type Bus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

func NewBus(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	return &Bus{conn: nc, js: js}, nil
}

// EnsureStream creates the work-queue stream for subject if it does not exist.
func (b *Bus) EnsureStream(stream, subject string) error {
	if _, err := b.js.StreamInfo(stream); err == nil {
		return nil
	} else if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("stream info: %w", err)
	}
	_, err := b.js.AddStream(&nats.StreamConfig{
		Name:      stream,
		Subjects:  []string{subject},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return fmt.Errorf("add stream: %w", err)
	}
	return nil
}

func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

func (b *Bus) Ping() error {
	if b == nil || !b.conn.IsConnected() {
		return errors.New("nats not connected")
	}
	return b.conn.FlushTimeout(nats.DefaultTimeout)
}

func (b *Bus) Publish(ctx context.Context, subject string, v any) error {
	if b == nil {
		return errors.New("nil bus")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = b.js.Publish(subject, data, nats.Context(ctx))
	return err
}

type subscription struct {
	sub    *nats.Subscription
	mu     sync.Mutex
	closed bool
}

func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.sub.Drain()
}

// Subscribe attaches a durable, manually acked consumer. A handler error naks
// the message so JetStream redelivers it.
func (b *Bus) Subscribe(ctx context.Context, subject, durable string, fn func(ctx context.Context, data []byte) error) (io.Closer, error) {
	if b == nil {
		return nil, errors.New("nil bus")
	}
	sub, err := b.js.Subscribe(subject, func(msg *nats.Msg) {
		if err := fn(ctx, msg.Data); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, nats.Durable(durable), nats.ManualAck(), nats.AckExplicit())
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s := &subscription{sub: sub}
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	return s, nil
}

// QueueSender enqueues messages for the mailer worker instead of dialing SMTP.
type QueueSender struct {
	pub     Publisher
	subject string
}

func NewQueueSender(pub Publisher, subject string) *QueueSender {
	return &QueueSender{pub: pub, subject: subject}
}

func (q *QueueSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := q.pub.Publish(ctx, q.subject, msg); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	return nil
}

// Worker drains the queue and hands each message to the delivery sender.
type Worker struct {
	delivery Sender
	logger   *slog.Logger
}

func NewWorker(delivery Sender, logger *slog.Logger) *Worker {
	return &Worker{delivery: delivery, logger: logger}
}

// Handle decodes one queued message and delivers it. Undecodable payloads are
// dropped (acked) since redelivery cannot fix them.
func (w *Worker) Handle(ctx context.Context, data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		w.logger.ErrorContext(ctx, "drop undecodable mail payload", "error", err)
		observability.RecordMailDelivery(ctx, "unknown", "queue", "dropped")
		return nil
	}
	if err := msg.Validate(); err != nil {
		w.logger.ErrorContext(ctx, "drop invalid mail message", "kind", msg.Kind, "error", err)
		observability.RecordMailDelivery(ctx, string(msg.Kind), "queue", "dropped")
		return nil
	}
	if err := w.delivery.Send(ctx, msg); err != nil {
		w.logger.WarnContext(ctx, "mail delivery failed, will retry", "kind", msg.Kind, "error", err)
		observability.RecordMailDelivery(ctx, string(msg.Kind), "queue", "retry")
		return err
	}
	observability.RecordMailDelivery(ctx, string(msg.Kind), "queue", "sent")
	return nil
}

// Run subscribes the worker and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context, bus *Bus, subject, durable string) error {
	sub, err := bus.Subscribe(ctx, subject, durable, w.Handle)
	if err != nil {
		return err
	}
	w.logger.Info("mailer worker started", "subject", subject, "durable", durable)
	<-ctx.Done()
	return sub.Close()
}
