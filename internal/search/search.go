package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"

	"github.com/Skotchmaster/game_store/internal/models"
)

type Config struct {
	URL      string
	User     string
	Password string
}

// NewClient connects and checks the cluster answers.
func NewClient(ctx context.Context, cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res)
	}
	return client, nil
}

type Engine struct {
	es    *elasticsearch.Client
	index string
}

func New(es *elasticsearch.Client, index string) *Engine {
	return &Engine{es: es, index: index}
}

func (e *Engine) Index() string { return e.index }

var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":          map[string]any{"type": "keyword"},
			"title":       map[string]any{"type": "text", "fields": map[string]any{"raw": map[string]any{"type": "keyword"}}},
			"description": map[string]any{"type": "text"},
			"developer":   map[string]any{"type": "text"},
			"publisher":   map[string]any{"type": "text"},
			"genre":       map[string]any{"type": "keyword"},
			"platform":    map[string]any{"type": "keyword"},
			"price":       map[string]any{"type": "double"},
			"rating":      map[string]any{"type": "double"},
			"inStock":     map[string]any{"type": "boolean"},
			"releaseDate": map[string]any{"type": "date"},
		},
	},
}

func (e *Engine) EnsureIndex(ctx context.Context) error {
	res, err := e.es.Indices.Exists([]string{e.index}, e.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(indexMapping); err != nil {
		return err
	}
	res, err = e.es.Indices.Create(e.index, e.es.Indices.Create.WithContext(ctx), e.es.Indices.Create.WithBody(&buf))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

func (e *Engine) IndexGame(ctx context.Context, g models.Game) error {
	body, err := json.Marshal(g)
	if err != nil {
		return err
	}
	res, err := e.es.Index(e.index, bytes.NewReader(body),
		e.es.Index.WithContext(ctx),
		e.es.Index.WithDocumentID(g.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("index game %s: %w", g.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index game", res)
	}
	return nil
}

func (e *Engine) DeleteGame(ctx context.Context, id uuid.UUID) error {
	res, err := e.es.Delete(e.index, id.String(), e.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete game", res)
	}
	return nil
}

// BulkIndex writes games with a single _bulk request.
func (e *Engine) BulkIndex(ctx context.Context, games []models.Game) error {
	if len(games) == 0 {
		return nil
	}
	body, err := BulkBody(e.index, games)
	if err != nil {
		return err
	}
	res, err := e.es.Bulk(body, e.es.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("bulk index", res)
	}

	var r struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return fmt.Errorf("bulk decode: %w", err)
	}
	if r.Errors {
		return fmt.Errorf("bulk index: some documents were rejected")
	}
	return nil
}

func (e *Engine) Search(ctx context.Context, query string, from, size int) (int64, []models.Game, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(QueryBody(query, from, size)); err != nil {
		return 0, nil, fmt.Errorf("search encode: %w", err)
	}

	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(e.index),
		e.es.Search.WithBody(&buf),
		e.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res)
	}
	return decodeHits(res.Body)
}

func decodeHits(body io.Reader) (int64, []models.Game, error) {
	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Game `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search decode: %w", err)
	}

	games := make([]models.Game, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		games[i] = hit.Source
	}
	return r.Hits.Total.Value, games, nil
}

func QueryBody(query string, from, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "developer", "description"},
				"fuzziness": "AUTO",
			},
		},
		"sort": []any{
			"_score",
			map[string]any{"title.raw": map[string]any{"order": "asc", "unmapped_type": "keyword"}},
		},
		"from": from,
		"size": size,
	}
}

func BulkBody(index string, games []models.Game) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, g := range games {
		meta := map[string]any{"index": map[string]any{"_index": index, "_id": g.ID.String()}}
		if err := enc.Encode(meta); err != nil {
			return nil, err
		}
		if err := enc.Encode(g); err != nil {
			return nil, err
		}
	}
	return &buf, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	return fmt.Errorf("elasticsearch %s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}
