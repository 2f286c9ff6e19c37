package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/phishdash/internal/di"
	"github.com/mikey/phishdash/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser dashboard",
	Long: `Serve the dashboard over HTTP until interrupted.

Examples:
  phishdash serve
  phishdash serve --listen 0.0.0.0:8080 --agent-url http://agent:5000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := di.BuildContainer(flags)
		if err != nil {
			return err
		}
		return container.Invoke(serve)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flags.ListenAddress, "listen", "", "Address to serve the dashboard on (overrides server.listen_address)")
}

// serve runs the web front end until SIGINT or SIGTERM
func serve(logger *zap.Logger, frontend ports.Frontend) error {
	defer logger.Sync()

	if err := frontend.Start(); err != nil {
		logger.Error("Failed to start dashboard", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := frontend.Stop(); err != nil {
		logger.Error("Failed to stop dashboard", zap.Error(err))
		return err
	}

	logger.Info("Shutdown complete")
	return nil
}
