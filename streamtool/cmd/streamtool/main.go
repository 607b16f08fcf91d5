package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	logLevel    string
	metricsDump string
	metricsPort uint32

	rootCmd = &cobra.Command{
		Use:          "streamtool",
		Short:        "Split byte streams into stored chunks and join them back",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level, overrides config")
	rootCmd.PersistentFlags().StringVar(&metricsDump, "metrics-dump", "", "Write metrics in text format to this file on exit")
	rootCmd.PersistentFlags().Uint32Var(&metricsPort, "metrics-port", 0, "Port to export metrics on while running, 0 disables")

	cobra.CheckErr(rootCmd.MarkPersistentFlagFilename("config", "yaml", "yml"))

	rootCmd.AddCommand(
		splitCmd,
		joinCmd,
		verifyCmd,
		statCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}
