package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"finagent/internal/eval"
)

var (
	evalNumSamples int
	evalOutput     string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the validation queries and score the answers",
	Long: "eval runs the built-in validation queries through the agent, scores " +
		"each answer for faithfulness, answer relevancy and context recall, " +
		"appends the per-query records to the results file and prints a summary table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		outputPath := rt.cfg.Eval.ResultsPath
		if evalOutput != "" {
			outputPath = evalOutput
		}
		evaluator := eval.NewEvaluator(rt.provider, rt.cfg.Eval.RecallThreshold, rt.log)
		runner := eval.NewRunner(rt.service, evaluator, outputPath, rt.log)

		records, err := runner.Run(cmd.Context(), eval.DefaultValidationSet(), evalNumSamples)
		if err != nil {
			return fmt.Errorf("evaluation run: %w", err)
		}
		eval.PrintSummary(cmd.OutOrStdout(), records)
		fmt.Fprintf(cmd.OutOrStdout(), "results appended to %s\n", outputPath)
		return nil
	},
}

func init() {
	evalCmd.Flags().IntVar(&evalNumSamples, "samples", 0, "number of validation queries to run (0 runs all)")
	evalCmd.Flags().StringVar(&evalOutput, "output", "", "results file (defaults to the configured eval results path)")
}
