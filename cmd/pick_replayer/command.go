package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "pick_replayer",
		Short:        "Replay a pick batch file into locus over OTLP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return replay(cmd.Context(), opts, logger)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.inputFile, "ep", "-", "Batch input file, - for stdin")
	flags.StringVarP(&opts.format, "format", "f", "json", "Batch input format: json, zjson")
	flags.StringVar(&opts.address, "address", "localhost:4317", "OTLP gRPC address of locus")
	flags.IntVar(&opts.batchSize, "batch-size", 1, "Picks per export request")
	flags.DurationVar(&opts.delay, "delay", 100*time.Millisecond, "Pause between export requests")
	return cmd
}
