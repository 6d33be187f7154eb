package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"finagent/internal/indexer"
)

var indexCmd = &cobra.Command{
	Use:   "index <chunks.jsonl> [more.jsonl ...]",
	Short: "Embed and upsert pre-chunked report text into the vector store",
	Long: "index reads JSONL files where each line holds a text chunk and its " +
		"metadata, embeds the chunks in batches and upserts them into the " +
		"configured vector store.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		idx := indexer.New(rt.embedder, rt.store, rt.cfg.Embedder.BatchSize, rt.log)
		total := 0
		for _, path := range args {
			chunks, err := indexer.LoadChunks(path)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			n, err := idx.Index(cmd.Context(), chunks)
			if err != nil {
				return fmt.Errorf("index %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: indexed %d chunks\n", path, n)
			total += n
		}
		count, err := rt.store.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("count points: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "done: %d chunks indexed, %d points in collection\n", total, count)
		return nil
	},
}
