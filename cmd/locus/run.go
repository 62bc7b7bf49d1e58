package main

import (
	"fmt"

	"github.com/Avi18971911/Locus/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func run(cmd *cobra.Command, opts *options) error {
	logger, err := newLogger(opts.debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	if opts.inputFile != "" {
		return runBatch(cmd.Context(), cfg, opts, logger)
	}
	return runStream(cmd.Context(), cfg, logger)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	v, err := config.New(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flagKeys := map[string]string{
		"test":      "test",
		"playback":  "playback",
		"inventory": "inventory_file",
	}
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return config.Config{}, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, err
	}
	if opts.fake {
		cfg.ReleaseToDatabase = false
	}
	if opts.inputFile != "" {
		// batch input never goes to the messaging system
		cfg.Test = true
	}
	if cfg.InventoryFile == "" {
		return config.Config{}, fmt.Errorf("%w: inventory_file must be set", config.ErrInvalidConfig)
	}
	return cfg, nil
}
