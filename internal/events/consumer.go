package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

func NewReader(brokers []string, groupID, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
		StartOffset: kafka.FirstOffset,
	})
}

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Consume fetches messages until ctx is cancelled. A message is committed
// after handle returns; handler errors are logged and the message is skipped.
func Consume(ctx context.Context, r MessageReader, l *slog.Logger, handle func(context.Context, kafka.Message) error) error {
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return fmt.Errorf("kafka: fetch: %w", err)
		}

		if err := handle(ctx, m); err != nil {
			l.Error("event_handle_failed", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
		}
		if err := r.CommitMessages(ctx, m); err != nil {
			return fmt.Errorf("kafka: commit: %w", err)
		}
	}
}

func DecodeGameEvent(value []byte) (GameEvent, error) {
	var ev GameEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return GameEvent{}, fmt.Errorf("decode game event: %w", err)
	}
	if ev.Type == "" {
		return GameEvent{}, errors.New("decode game event: missing type")
	}
	return ev, nil
}
