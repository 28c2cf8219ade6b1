package repo

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/game_store/internal/models"
)

type GameFilter struct {
	Query    string
	Genre    string
	Platform string
	InStock  *bool
}

func (r *GormRepo) gamesQuery(ctx context.Context, f GameFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Game{})
	if s := strings.TrimSpace(f.Query); s != "" {
		p := likePattern(s)
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '!' OR LOWER(developer) LIKE ? ESCAPE '!'`, p, p)
	}
	if f.Genre != "" {
		q = q.Where("genre = ?", f.Genre)
	}
	if f.Platform != "" {
		// platform is stored as a JSON array of strings
		quoted, _ := json.Marshal(f.Platform)
		q = q.Where(`platform LIKE ? ESCAPE '!'`, "%"+escapeLike(string(quoted))+"%")
	}
	if f.InStock != nil {
		q = q.Where("in_stock = ?", *f.InStock)
	}
	return q
}

func (r *GormRepo) ListGames(ctx context.Context, f GameFilter) ([]models.Game, error) {
	games := make([]models.Game, 0)
	if err := r.gamesQuery(ctx, f).Order("title ASC").Order("id ASC").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (r *GormRepo) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	var game models.Game
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *GormRepo) CreateGame(ctx context.Context, game *models.Game) (*models.Game, error) {
	if err := r.DB.WithContext(ctx).Create(game).Error; err != nil {
		return nil, err
	}
	return game, nil
}

func (r *GormRepo) UpdateGame(ctx context.Context, id uuid.UUID, patch models.GamePatch) (*models.Game, error) {
	var game models.Game
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&game).Error; err != nil {
			return err
		}
		patch.Apply(&game)
		return tx.Save(&game).Error
	})
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *GormRepo) DeleteGame(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Game{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) FeaturedGames(ctx context.Context, minRating float64, limit int) ([]models.Game, error) {
	games := make([]models.Game, 0, limit)
	err := r.DB.WithContext(ctx).
		Where("rating >= ?", minRating).
		Order("rating DESC").Order("title ASC").
		Limit(limit).
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

func (r *GormRepo) NewReleases(ctx context.Context, limit int) ([]models.Game, error) {
	games := make([]models.Game, 0, limit)
	err := r.DB.WithContext(ctx).
		Where("release_date IS NOT NULL").
		Order("release_date DESC").Order("title ASC").
		Limit(limit).
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

// Facets returns the distinct genres and platforms, sorted.
func (r *GormRepo) Facets(ctx context.Context) ([]string, []string, error) {
	var rows []models.Game
	if err := r.DB.WithContext(ctx).Select("genre", "platform").Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	genreSet := map[string]struct{}{}
	platformSet := map[string]struct{}{}
	for _, g := range rows {
		if g.Genre != "" {
			genreSet[g.Genre] = struct{}{}
		}
		for _, p := range g.Platform {
			if p != "" {
				platformSet[p] = struct{}{}
			}
		}
	}
	return sortedKeys(genreSet), sortedKeys(platformSet), nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SearchGames is the database fallback for full-text search.
func (r *GormRepo) SearchGames(ctx context.Context, q string, offset, limit int) (int64, []models.Game, error) {
	p := likePattern(q)
	where := `LOWER(title) LIKE ? ESCAPE '!' OR LOWER(developer) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'`

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Game{}).Where(where, p, p, p).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Game, 0, limit)
	if err := r.DB.WithContext(ctx).
		Where(where, p, p, p).
		Order("rating DESC").Order("title ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// EachGameBatch walks the whole catalog in batches of size n.
func (r *GormRepo) EachGameBatch(ctx context.Context, n int, fn func([]models.Game) error) error {
	var batch []models.Game
	res := r.DB.WithContext(ctx).Order("id ASC").FindInBatches(&batch, n, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	})
	return res.Error
}
