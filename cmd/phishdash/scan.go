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

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the inbox once and print the results",
	Long: `Ask the agent to scan the inbox and print one card per analysed email.

Examples:
  phishdash scan             # Collapsed cards
  phishdash scan --expand    # Include explanation, heuristic signals and action
  phishdash scan --json      # Machine-readable output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := di.BuildCLIContainer(flags)
		if err != nil {
			return err
		}
		return container.Invoke(scan)
	},
}

func init() {
	scanCmd.Flags().BoolVar(&flags.Expand, "expand", false, "Show the full analysis of every card")
	scanCmd.Flags().BoolVar(&flags.JSON, "json", false, "Output the dashboard state as JSON")
}

// scan runs the terminal front end; an interrupt aborts the pending request
func scan(logger *zap.Logger, frontend ports.Frontend) error {
	defer logger.Sync()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return runScan(logger, frontend, sigCh)
}

func runScan(logger *zap.Logger, frontend ports.Frontend, sigCh <-chan os.Signal) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Interrupted, aborting scan")
			if err := frontend.Stop(); err != nil {
				logger.Error("Failed to stop scan", zap.Error(err))
			}
		case <-done:
		}
	}()

	return frontend.Start()
}
