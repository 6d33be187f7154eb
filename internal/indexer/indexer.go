package indexer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"finagent/internal/domain"
)

// Indexer loads pre-chunked disclosure text (the ingestion pipeline's
// output mapping of chunk text to metadata) and writes it to the vector
// store.
type Indexer struct {
	embedder  domain.Embedder
	store     domain.VectorStore
	batchSize int
	log       *zap.Logger
}

func New(embedder domain.Embedder, store domain.VectorStore, batchSize int, log *zap.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Indexer{embedder: embedder, store: store, batchSize: batchSize, log: log}
}

// LoadChunks reads a JSONL chunk file: one {"text": ..., "metadata": {...}}
// object per line. Blank lines are skipped.
func LoadChunks(path string) ([]domain.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []domain.Chunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var c domain.Chunk
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("parse chunk at line %d: %w", line, err)
		}
		if c.Text == "" {
			continue
		}
		chunks = append(chunks, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks found in %s", path)
	}
	return chunks, nil
}

// Index embeds the chunks in batches and upserts them, ensuring the
// collection exists with the embedder's dimensionality first. Returns
// the number of points written.
func (i *Indexer) Index(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if err := i.store.EnsureCollection(ctx, i.embedder.Dimension()); err != nil {
		return 0, fmt.Errorf("ensure collection: %w", err)
	}

	total := 0
	for start := 0; start < len(chunks); start += i.batchSize {
		end := start + i.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}
		vectors, err := i.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return total, fmt.Errorf("embed batch: %w", err)
		}
		n, err := i.store.Upsert(ctx, batch, vectors)
		if err != nil {
			return total, fmt.Errorf("upsert batch: %w", err)
		}
		total += n
		i.log.Info("batch indexed", zap.Int("points", total), zap.Int("chunks", len(chunks)))
	}
	return total, nil
}
