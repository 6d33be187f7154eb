package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"finagent/internal/domain"
)

// Storage is a minimal REST client to Qdrant. It assumes cosine distance
// and creates the collection idempotently.
type Storage struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// Config configures the Qdrant REST client. The API key is resolved from
// the configured env var and may be empty for unauthenticated instances.
type Config struct {
	URL        string
	APIKeyEnv  string
	Collection string
	Timeout    time.Duration
}

var _ domain.VectorStore = (*Storage)(nil)

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     apiKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection if it does not exist. An
// existing collection with a different vector size is reported as a
// configuration error so startup can abort.
func (s *Storage) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}

	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	status, err := s.getJSON(ctx, s.collectionURL(""), &info)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		if got := info.Result.Config.Params.Vectors.Size; got != dimension {
			return fmt.Errorf("collection %q has dimension %d, expected %d", s.collection, got, dimension)
		}
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.putJSON(ctx, s.collectionURL(""), body)
}

// Upsert stores chunks with their vectors, assigning every point a fresh
// uuid. A chunk/vector length mismatch fails before anything is written.
func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) (int, error) {
	if len(chunks) != len(vectors) {
		return 0, fmt.Errorf("mismatch: %d chunks vs %d vectors", len(chunks), len(vectors))
	}
	points := make([]map[string]any, len(chunks))
	for i := range chunks {
		payload := make(map[string]any, len(chunks[i].Metadata)+1)
		for k, v := range chunks[i].Metadata {
			payload[k] = v
		}
		payload["text"] = chunks[i].Text
		points[i] = map[string]any{
			"id":      uuid.NewString(),
			"vector":  vectors[i],
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	if err := s.putJSON(ctx, s.collectionURL("/points?wait=true"), body); err != nil {
		return 0, err
	}
	return len(points), nil
}

// Search returns the nearest neighbours ordered by descending cosine
// score, optionally restricted by payload equality filters.
func (s *Storage) Search(ctx context.Context, vector []float64, topK int, filters map[string]string) ([]domain.Passage, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if len(filters) > 0 {
		must := make([]map[string]any, 0, len(filters))
		for k, v := range filters {
			must = append(must, map[string]any{
				"key":   k,
				"match": map[string]any{"value": v},
			})
		}
		req["filter"] = map[string]any{"must": must}
	}

	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}

	results := make([]domain.Passage, 0, len(resp.Result))
	for _, r := range resp.Result {
		p := domain.Passage{
			ID:       fmt.Sprintf("%v", r.ID),
			Score:    r.Score,
			Metadata: make(map[string]string, len(r.Payload)),
		}
		for k, v := range r.Payload {
			str, ok := v.(string)
			if !ok {
				continue
			}
			if k == "text" {
				p.Text = str
			} else {
				p.Metadata[k] = str
			}
		}
		results = append(results, p)
	}
	return results, nil
}

// Count returns the exact number of points in the collection.
func (s *Storage) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, s.collectionURL("/points/count"), map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

func (s *Storage) do(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	return s.client.Do(req)
}

func (s *Storage) getJSON(ctx context.Context, url string, out any) (int, error) {
	resp, err := s.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("qdrant GET %s failed: %s", url, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (s *Storage) putJSON(ctx context.Context, url string, body any) error {
	resp, err := s.do(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Storage) postJSON(ctx context.Context, url string, body, out any) error {
	resp, err := s.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
