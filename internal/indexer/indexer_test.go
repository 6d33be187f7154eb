package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finagent/internal/domain"
	"finagent/internal/logging"
	"finagent/internal/vectorstore/memory"
)

type fixedEmbedder struct{ dim int }

func (e fixedEmbedder) Name() string   { return "fixed" }
func (e fixedEmbedder) Dimension() int { return e.dim }

func (e fixedEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return make([]float64, e.dim), nil
}

func (e fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		v := make([]float64, e.dim)
		v[i%e.dim] = 1
		out[i] = v
	}
	return out, nil
}

func TestLoadChunks(t *testing.T) {
	t.Run("parses one chunk per line and skips blanks", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chunks.jsonl")
		content := `{"text": "first chunk", "metadata": {"source": "FY23_10K"}}

{"text": "second chunk", "metadata": {"source": "FY23_10K"}}
{"text": "", "metadata": {"source": "FY23_10K"}}
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		chunks, err := LoadChunks(path)

		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "first chunk", chunks[0].Text)
		assert.Equal(t, "FY23_10K", chunks[0].Metadata["source"])
	})

	t.Run("reports the failing line number", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chunks.jsonl")
		require.NoError(t, os.WriteFile(path, []byte("{\"text\": \"ok\"}\nnot json\n"), 0o644))

		_, err := LoadChunks(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("fails on a file with no usable chunks", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chunks.jsonl")
		require.NoError(t, os.WriteFile(path, []byte("\n{\"text\": \"\"}\n"), 0o644))

		_, err := LoadChunks(path)

		assert.Error(t, err)
	})
}

func TestIndex(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStorage()
	idx := New(fixedEmbedder{dim: 4}, store, 2, logging.NewNop())

	chunks := make([]domain.Chunk, 5)
	for i := range chunks {
		chunks[i] = domain.Chunk{Text: "chunk"}
	}

	n, err := idx.Index(ctx, chunks)

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
