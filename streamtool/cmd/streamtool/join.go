package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/yandex/streamtool/streamtool/internal/manifest"
	"github.com/yandex/streamtool/streamtool/pkg/atomicfs"
)

var joinCmd = &cobra.Command{
	Use:   "join <file|->",
	Short: "Reassemble a stored stream into a file",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		s, err := a.newSplitter()
		if err != nil {
			return err
		}

		m, err := manifest.Load(ctx, s.Store())
		if err != nil {
			return err
		}

		if args[0] == "-" {
			_, err = s.Join(ctx, m, os.Stdout)
			return err
		}

		out, err := atomicfs.Create(args[0])
		if err != nil {
			return err
		}
		defer func() {
			_ = out.Discard()
		}()

		if _, err := s.Join(ctx, m, out); err != nil {
			return err
		}
		return out.Commit()
	}),
}
