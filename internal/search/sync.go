package search

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
)

type Writer interface {
	IndexGame(ctx context.Context, g models.Game) error
	DeleteGame(ctx context.Context, id uuid.UUID) error
	BulkIndex(ctx context.Context, games []models.Game) error
}

// ApplyGameEvent mirrors one catalog change into the index.
func ApplyGameEvent(ctx context.Context, w Writer, ev events.GameEvent) error {
	switch ev.Type {
	case events.GameCreated, events.GameUpdated:
		if ev.Game == nil {
			return fmt.Errorf("%s event for %s has no game", ev.Type, ev.GameID)
		}
		return w.IndexGame(ctx, *ev.Game)
	case events.GameDeleted:
		return w.DeleteGame(ctx, ev.GameID)
	default:
		return fmt.Errorf("unknown game event type %q", ev.Type)
	}
}

// Reindex bulk-loads the whole catalog and returns the number of games written.
func Reindex(ctx context.Context, r *repo.GormRepo, w Writer, batch int) (int, error) {
	n := 0
	err := r.EachGameBatch(ctx, batch, func(games []models.Game) error {
		if err := w.BulkIndex(ctx, games); err != nil {
			return err
		}
		n += len(games)
		return nil
	})
	return n, err
}
