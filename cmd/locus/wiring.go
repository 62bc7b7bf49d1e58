package main

import (
	"fmt"

	"github.com/Avi18971911/Locus/internal/config"
	"github.com/Avi18971911/Locus/internal/db/write_buffer"
	bufferService "github.com/Avi18971911/Locus/internal/pipeline/buffer/service"
	centroidService "github.com/Avi18971911/Locus/internal/pipeline/centroid/service"
	clusterService "github.com/Avi18971911/Locus/internal/pipeline/cluster/service"
	inventoryService "github.com/Avi18971911/Locus/internal/pipeline/inventory/service"
	originService "github.com/Avi18971911/Locus/internal/pipeline/origin/service"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	processorService "github.com/Avi18971911/Locus/internal/pipeline/processor/service"
	"go.uber.org/zap"
)

func identityKeyOptions(cfg config.Config) pickModel.IdentityKeyOptions {
	return pickModel.IdentityKeyOptions{
		WithLocation: cfg.EnableLocClust,
		WithChannel:  cfg.EnableChaClust,
	}
}

func newResolver(cfg config.Config, logger *zap.Logger) (*inventoryService.CoordinateResolverImpl, error) {
	inventory, err := inventoryService.LoadInventoryFromFile(cfg.InventoryFile)
	if err != nil {
		return nil, err
	}
	resolver, err := inventoryService.NewCachedCoordinateResolver(
		inventory,
		identityKeyOptions(cfg),
		cfg.InventoryCacheSize,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinate resolver: %w", err)
	}
	return resolver, nil
}

func newProcessor(
	cfg config.Config,
	resolver inventoryService.CoordinateResolver,
	publisher originService.Publisher,
	pickSink write_buffer.DatabaseWriteBuffer[pickModel.Pick],
	releaseEachCycle bool,
	logger *zap.Logger,
) *processorService.PickProcessor {
	store := clusterService.NewClusterStore(logger)
	matcher := clusterService.NewMatcher(
		store,
		clusterService.MatcherConfig{
			MaxPickDelay:      cfg.PickDelay(),
			MinPickDistanceKm: cfg.MinPickDistance,
			MaxPickDistanceKm: cfg.MaxPickDistance,
			IdentityKey:       identityKeyOptions(cfg),
			EnableSameIdClust: cfg.EnableSameIdClust,
		},
		logger,
	)
	emitter := originService.NewOriginEmitter(
		centroidService.NewCentroidEstimator(logger),
		originService.NewOriginBuilder(originService.BuilderConfig{
			AgencyId:       cfg.AgencyId,
			Author:         cfg.Author,
			PhaseCode:      cfg.DefaultPhaseType,
			AssignPublicId: cfg.ReleaseToDatabase,
		}),
		originService.NewCentroidLocator(),
		publisher,
		originService.EmitterConfig{
			ReleaseCluster:            cfg.ReleaseCluster,
			ReleaseLocation:           cfg.ReleaseLocation,
			MinReleasedClusteredPicks: cfg.MinReleasedClusteredPicks,
		},
		logger,
	)
	buffer := bufferService.NewPickBuffer(resolver, cfg.BufferInterval(), logger)
	return processorService.NewPickProcessor(buffer, store, matcher, emitter, pickSink, releaseEachCycle, logger)
}
