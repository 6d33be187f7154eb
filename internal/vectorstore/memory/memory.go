package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"finagent/internal/domain"
)

type point struct {
	id     string
	vector []float64
	chunk  domain.Chunk
}

// Storage is an in-memory vector store using brute-force cosine
// similarity. It backs tests and local runs without a Qdrant instance.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	points    []point
}

var _ domain.VectorStore = (*Storage)(nil)

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) EnsureCollection(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("collection dimension %d does not match requested %d", s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

func (s *Storage) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float64) (int, error) {
	if len(chunks) != len(vectors) {
		return 0, fmt.Errorf("mismatch: %d chunks vs %d vectors", len(chunks), len(vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if s.dimension != 0 && len(v) != s.dimension {
			return 0, fmt.Errorf("vector dimension %d does not match collection %d", len(v), s.dimension)
		}
	}
	if s.dimension == 0 && len(vectors) > 0 {
		s.dimension = len(vectors[0])
	}
	for i := range chunks {
		s.points = append(s.points, point{
			id:     uuid.NewString(),
			vector: vectors[i],
			chunk:  chunks[i],
		})
	}
	return len(chunks), nil
}

func (s *Storage) Search(_ context.Context, vector []float64, topK int, filters map[string]string) ([]domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}

	results := make([]domain.Passage, 0, topK)
	for _, p := range s.points {
		if !matches(p.chunk.Metadata, filters) {
			continue
		}
		meta := make(map[string]string, len(p.chunk.Metadata))
		for k, v := range p.chunk.Metadata {
			meta[k] = v
		}
		results = append(results, domain.Passage{
			ID:       p.id,
			Score:    cosine(p.vector, vector),
			Text:     p.chunk.Text,
			Metadata: meta,
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func (s *Storage) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points), nil
}

func matches(metadata map[string]string, filters map[string]string) bool {
	for k, want := range filters {
		if metadata[k] != want {
			return false
		}
	}
	return true
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
