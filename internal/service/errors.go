package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)

const publishTimeout = 5 * time.Second

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// publish sends an event and only logs a failure; writes never fail
// because the broker is down.
func publish(ctx context.Context, p events.Publisher, topic, key string, ev any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "key", key, "error", err)
	}
}
