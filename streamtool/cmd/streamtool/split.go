package main

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yandex/streamtool/streamtool/internal/codec"
	"github.com/yandex/streamtool/streamtool/internal/splitter"
)

var splitCmd = &cobra.Command{
	Use:   "split <file|->",
	Short: "Split a file into chunks and store them with a manifest",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("chunk-size") {
			a.conf.Split.ChunkSize, _ = cmd.Flags().GetString("chunk-size")
		}
		if cmd.Flags().Changed("codec") {
			a.conf.Split.Codec, _ = cmd.Flags().GetString("codec")
		}
		if err := a.conf.Validate(); err != nil {
			return err
		}

		chunkSize, err := a.conf.ChunkSizeBytes()
		if err != nil {
			return err
		}
		c, err := codec.Parse(a.conf.Split.Codec)
		if err != nil {
			return err
		}

		s, err := a.newSplitter()
		if err != nil {
			return err
		}

		in, source, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		m, err := s.Split(ctx, in, source, splitter.Options{
			ChunkSize: chunkSize,
			Codec:     c,
		})
		if err != nil {
			return err
		}

		var stored uint64
		for _, chunk := range m.Chunks {
			stored += chunk.StoredSize
		}
		a.logger.Info(ctx, "Split finished",
			zap.String("source", source),
			zap.Int("chunks", len(m.Chunks)),
			zap.String("raw", humanize.IBytes(m.TotalSize)),
			zap.String("stored", humanize.IBytes(stored)),
			zap.String("checksum", m.Checksum),
		)
		return nil
	}),
}

func init() {
	splitCmd.Flags().String("chunk-size", "", "Chunk size, e.g. 64MiB; overrides config")
	splitCmd.Flags().String("codec", "", "Chunk codec: none, zstd or zstd_<level>; overrides config")
}
