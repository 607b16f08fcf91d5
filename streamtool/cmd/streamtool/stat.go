package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yandex/streamtool/streamtool/internal/linescan"
)

var (
	statOffset string
	statLimit  string
	statDelim  string
)

func parseDelim(s string) (byte, error) {
	unquoted, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return 0, fmt.Errorf("malformed delimiter %q: %w", s, err)
	}
	if len(unquoted) != 1 {
		return 0, fmt.Errorf("delimiter must be a single byte, got %q", s)
	}
	return unquoted[0], nil
}

func parseOptionalBytes(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return humanize.ParseBytes(s)
}

var statCmd = &cobra.Command{
	Use:   "stat <file|->",
	Short: "Count delimited records in a window of a file",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		var opts linescan.Options
		var err error

		if opts.Offset, err = parseOptionalBytes(statOffset); err != nil {
			return fmt.Errorf("invalid offset: %w", err)
		}
		if opts.Limit, err = parseOptionalBytes(statLimit); err != nil {
			return fmt.Errorf("invalid limit: %w", err)
		}
		if opts.Delim, err = parseDelim(statDelim); err != nil {
			return err
		}

		in, _, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		stats, err := linescan.Scan(ctx, in, opts)
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		if err := enc.Encode(stats); err != nil {
			return err
		}
		return enc.Close()
	}),
}

func init() {
	statCmd.Flags().StringVar(&statOffset, "offset", "", "Bytes to skip before scanning, e.g. 1KiB")
	statCmd.Flags().StringVar(&statLimit, "limit", "", "Maximum bytes to scan after the offset")
	statCmd.Flags().StringVar(&statDelim, "delim", `\n`, "Record delimiter, Go escapes allowed")
}
