package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mikey/phishdash/internal/core"
	"github.com/mikey/phishdash/internal/di"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the agent is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := di.BuildCLIContainer(flags)
		if err != nil {
			return err
		}
		return container.Invoke(func(logger *zap.Logger, client core.AgentClient) error {
			defer logger.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			status, err := client.Status(ctx)
			if err != nil {
				logger.Debug("Status request failed", zap.Error(err))
				return fmt.Errorf("agent unreachable: %w", err)
			}

			out := cmd.OutOrStdout()
			if statusJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}
			fmt.Fprintf(out, "%s: %s\n", status.Service, status.Status)
			return nil
		})
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
}
