package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryShowEvidence bool

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Answer a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		question := strings.Join(args, " ")
		resp := rt.service.Run(cmd.Context(), question)

		fmt.Fprintln(cmd.OutOrStdout(), resp.Answer)
		if len(resp.ToolsUsed) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\nTools: %s\n", strings.Join(resp.ToolsUsed, ", "))
		}
		if v, ok := resp.Metrics["total_service_latency_s"]; ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Latency: %.3fs\n", v)
		}
		if resp.ImagePath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\nChart saved to %s\n", resp.ImagePath)
		}
		if queryShowEvidence && len(resp.Evidence) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\nSources (%d passages):\n", len(resp.Evidence))
			for i, ev := range resp.Evidence {
				text, _ := ev["text"].(string)
				if len(text) > 200 {
					text = text[:200] + "..."
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s\n", i+1, text)
			}
		}
		if resp.Error != "" {
			return fmt.Errorf("query failed: %s", resp.Error)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().BoolVar(&queryShowEvidence, "evidence", false, "print the retrieved source passages after the answer")
}
