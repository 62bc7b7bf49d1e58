// locus clusters seismic picks into preliminary centroid origins.
//
// Usage:
//
//	locus --inventory inventory.json                     # stream picks from OTLP and HTTP
//	locus --inventory inventory.json --ep picks.json     # cluster a batch file
//	locus --inventory inventory.json --ep - -f zjson -o origins.json --playback
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

type options struct {
	configPath string
	inputFile  string
	format     string
	output     string
	inventory  string
	playback   bool
	test       bool
	fake       bool
	debug      bool
}

func main() {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "locus",
		Short: "Cluster seismic picks into preliminary origins",
		Long: `locus groups picks that are close in time and space into clusters and
releases a weighted centroid origin for every cluster that forms or grows.

Without --ep it listens for picks on OTLP (gRPC) and HTTP and publishes
origins as they are released. With --ep it reads one batch of picks and
writes every origin into a single document at the end.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (yaml, json or toml)")
	flags.StringVar(&opts.inputFile, "ep", "", "Batch input file, - for stdin")
	flags.StringVarP(&opts.format, "format", "f", "json", "Batch input format: json, zjson")
	flags.StringVarP(&opts.output, "output", "o", "/dev/stdout", "Batch output file")
	flags.StringVar(&opts.inventory, "inventory", "", "Station inventory file")
	flags.BoolVar(&opts.playback, "playback", false, "Release batch origins after every pick instead of once at the end")
	flags.BoolVar(&opts.test, "test", false, "Do not send any origin")
	flags.BoolVar(&opts.fake, "fake", false, "Send artificial origins without public id instead of database notifiers")
	flags.BoolVar(&opts.debug, "debug", false, "Development logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
