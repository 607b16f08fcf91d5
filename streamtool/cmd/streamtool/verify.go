package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yandex/streamtool/streamtool/internal/manifest"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check stored chunks against the manifest",
	Args:  cobra.NoArgs,
	RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("concurrency") {
			a.conf.Verify.Concurrency, _ = cmd.Flags().GetInt("concurrency")
		}

		s, err := a.newSplitter()
		if err != nil {
			return err
		}

		m, err := manifest.Load(ctx, s.Store())
		if err != nil {
			return err
		}
		return s.Verify(ctx, m, a.conf.Verify.Concurrency)
	}),
}

func init() {
	verifyCmd.Flags().Int("concurrency", 0, "Number of chunks verified at once; overrides config")
}
