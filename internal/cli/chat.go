package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"finagent/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		p := tea.NewProgram(tui.New(rt.service), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("chat session failed: %w", err)
		}
		return nil
	},
}
