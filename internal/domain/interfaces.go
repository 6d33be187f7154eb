package domain

import "context"

// Embedder converts free text into fixed-dimension numeric vectors.
// Implementations wrap remote embedding services and must fail on a
// dimension mismatch rather than return a truncated vector.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// VectorStore persists vectors and supports similarity search over points
// of (id, vector, payload). Scores are cosine similarity in [-1, 1] and
// results are ordered by descending score; no thresholding happens here.
type VectorStore interface {
	// EnsureCollection creates the collection if missing. An existing
	// collection with a different dimensionality is a configuration
	// error and must abort startup, not be retried per query.
	EnsureCollection(ctx context.Context, dimension int) error
	// Upsert stores chunks with their vectors, assigning each a fresh
	// unique identifier. A length mismatch fails validation with no
	// partial write. Returns the number of points written.
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) (int, error)
	Search(ctx context.Context, vector []float64, topK int, filters map[string]string) ([]Passage, error)
	Count(ctx context.Context) (int, error)
}

// ChartRenderer renders a metric trend to an image file and returns the
// saved path.
type ChartRenderer interface {
	Render(metricLabel string, valuesByYear map[string]float64) (string, error)
}
