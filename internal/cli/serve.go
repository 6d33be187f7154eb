package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finagent/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agent over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		app := server.New(rt.service, rt.log)
		rt.log.Info("http server starting", zap.String("addr", rt.cfg.Server.Addr))
		if err := app.Listen(rt.cfg.Server.Addr); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	},
}
