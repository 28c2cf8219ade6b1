package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Handler func(ctx context.Context, r Receipt) error

// ErrMalformed marks a delivery whose body is not a receipt.
var ErrMalformed = errors.New("malformed receipt")

const requeueDelay = time.Second

// requeue reports whether a failed delivery should go back on the queue.
// Malformed messages are dropped; anything else is retried.
func requeue(err error) bool { return !errors.Is(err, ErrMalformed) }

// Run consumes PurchaseQueue until ctx is cancelled, redialling with
// exponential backoff (capped at 30s) whenever the connection drops.
func Run(ctx context.Context, url string, l *slog.Logger, handle Handler) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}

		conn, err := amqp.Dial(url)
		if err != nil {
			l.Warn("receipts_dial_failed", "error", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, l, handle)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		l.Warn("receipts_consume_ended", "error", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, l *slog.Logger, handle Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		l.Warn("receipts_qos_failed", "error", err)
	}
	if err := declare(ch); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(PurchaseQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleDelivery(ctx, d.Body, handle); err != nil {
				if !requeue(err) {
					l.Error("receipt_rejected", "message_id", d.MessageId, "error", err)
					_ = d.Nack(false, false)
					continue
				}
				l.Warn("receipt_requeued", "message_id", d.MessageId, "redelivered", d.Redelivered, "error", err)
				select {
				case <-ctx.Done():
					_ = d.Nack(false, true)
					return ctx.Err()
				case <-time.After(requeueDelay):
				}
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func HandleDelivery(ctx context.Context, body []byte, handle Handler) error {
	var r Receipt
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return handle(ctx, r)
}

// FileSink appends one line per receipt to Path.
type FileSink struct {
	Path string
	mu   sync.Mutex
}

func (s *FileSink) Write(_ context.Context, r Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir receipts dir: %w", err)
	}
	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open receipts log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(r.Line()); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}
	return nil
}
