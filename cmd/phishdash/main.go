package main

import (
	"fmt"
	"os"

	"github.com/mikey/phishdash/internal/di"
	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time
var Version = "dev"

var flags = &di.Flags{}

var rootCmd = &cobra.Command{
	Use:           "phishdash",
	Short:         "phishdash - dashboard for the autonomous phishing agent",
	Long:          "Trigger inbox scans on the phishing agent and review its verdicts in a browser or terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "phishdash version %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Path to config file (default: search /etc/phishdash, $HOME/.phishdash, ./configs, .)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&flags.AgentURL, "agent-url", "", "Base URL of the phishing agent (overrides agent.base_url)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
