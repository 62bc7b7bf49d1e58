package service

import (
	"context"
	"errors"
	"fmt"

	centroidService "github.com/Avi18971911/Locus/internal/pipeline/centroid/service"
	clusterModel "github.com/Avi18971911/Locus/internal/pipeline/cluster/model"
	originModel "github.com/Avi18971911/Locus/internal/pipeline/origin/model"
	"go.uber.org/zap"
)

const minimumClusterSize = 2

type EmitterConfig struct {
	ReleaseCluster            bool
	ReleaseLocation           bool
	MinReleasedClusteredPicks int
}

type OriginEmitter struct {
	estimator *centroidService.CentroidEstimator
	builder   *OriginBuilder
	locator   Locator
	publisher Publisher
	config    EmitterConfig
	logger    *zap.Logger
}

func NewOriginEmitter(
	estimator *centroidService.CentroidEstimator,
	builder *OriginBuilder,
	locator Locator,
	publisher Publisher,
	config EmitterConfig,
	logger *zap.Logger,
) *OriginEmitter {
	return &OriginEmitter{
		estimator: estimator,
		builder:   builder,
		locator:   locator,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// Release builds one origin per eligible cluster and publishes it once per enabled release policy.
// A failing cluster does not stop the others; every failure is returned joined.
func (oe *OriginEmitter) Release(
	ctx context.Context,
	clusters []*clusterModel.Cluster,
) ([]originModel.Origin, error) {
	var released []originModel.Origin
	var errs []error
	for _, cluster := range clusters {
		if cluster.Len() < oe.minimumSize() {
			oe.logger.Debug(
				"Cluster below release threshold",
				zap.Uint64("cluster_id", cluster.Id),
				zap.Int("len", cluster.Len()),
			)
			continue
		}
		estimate, err := oe.estimator.Estimate(cluster)
		if err != nil {
			errs = append(errs, fmt.Errorf("error estimating centroid of cluster %d: %w", cluster.Id, err))
			continue
		}
		origin := oe.builder.Build(cluster, estimate)
		oe.logger.Info(
			"Origin (weighted average centroid)",
			zap.Uint64("cluster_id", cluster.Id),
			zap.Float64("latitude", origin.Latitude),
			zap.Float64("longitude", origin.Longitude),
			zap.Float64("depth", origin.Depth),
			zap.Time("time", origin.Time),
			zap.Strings("pick_ids", cluster.PickIds()),
			zap.Float64s("weights", estimate.Weights),
		)

		if oe.config.ReleaseCluster {
			if err := oe.publish(ctx, origin); err != nil {
				errs = append(errs, err)
			} else {
				released = append(released, origin)
			}
		}

		if oe.config.ReleaseLocation {
			located, err := oe.locator.Locate(ctx, origin, cluster)
			if err != nil {
				errs = append(errs, fmt.Errorf("error locating cluster %d: %w", cluster.Id, err))
				continue
			}
			if err := oe.publish(ctx, located); err != nil {
				errs = append(errs, err)
			} else {
				released = append(released, located)
			}
		}
	}
	return released, errors.Join(errs...)
}

func (oe *OriginEmitter) publish(ctx context.Context, origin originModel.Origin) error {
	if err := oe.publisher.Publish(ctx, origin); err != nil {
		oe.logger.Error(
			"Failed to publish origin",
			zap.Uint64("cluster_id", origin.ClusterId),
			zap.String("public_id", origin.PublicId),
			zap.Error(err),
		)
		return fmt.Errorf("error publishing origin of cluster %d: %w", origin.ClusterId, err)
	}
	return nil
}

func (oe *OriginEmitter) minimumSize() int {
	if oe.config.MinReleasedClusteredPicks > minimumClusterSize {
		return oe.config.MinReleasedClusteredPicks
	}
	return minimumClusterSize
}
