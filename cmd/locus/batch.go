package main

import (
	"context"
	"fmt"

	"github.com/Avi18971911/Locus/internal/config"
	batchService "github.com/Avi18971911/Locus/internal/pipeline/batch/service"
	originService "github.com/Avi18971911/Locus/internal/pipeline/origin/service"
	"go.uber.org/zap"
)

func runBatch(ctx context.Context, cfg config.Config, opts *options, logger *zap.Logger) error {
	format, err := batchService.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	picks, err := batchService.LoadBatch(opts.inputFile, format, cfg.MaxBatchPicks)
	if err != nil {
		return fmt.Errorf("failed to load batch input: %w", err)
	}
	logger.Info("Loaded batch input", zap.String("input", opts.inputFile), zap.Int("pick_count", len(picks)))

	resolver, err := newResolver(cfg, logger)
	if err != nil {
		return err
	}
	accumulator := originService.NewAccumulator(0)
	processor := newProcessor(cfg, resolver, accumulator, nil, cfg.Playback, logger)

	for _, pick := range picks {
		if _, err := processor.HandlePick(ctx, pick); err != nil {
			logger.Warn("Pick cycle failed", zap.String("pick_id", pick.Id), zap.Error(err))
		}
	}
	if _, err := processor.Finish(ctx); err != nil {
		logger.Error("Final release failed", zap.Error(err))
	}

	ep := accumulator.EventParameters()
	logger.Info("Writing batch output", zap.String("output", opts.output), zap.Int("origin_count", len(ep.Origins)))
	return batchService.EmitBatch(opts.output, ep)
}
