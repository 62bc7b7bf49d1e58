package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Avi18971911/Locus/internal/db/write_buffer"
	bufferService "github.com/Avi18971911/Locus/internal/pipeline/buffer/service"
	clusterModel "github.com/Avi18971911/Locus/internal/pipeline/cluster/model"
	clusterService "github.com/Avi18971911/Locus/internal/pipeline/cluster/service"
	originModel "github.com/Avi18971911/Locus/internal/pipeline/origin/model"
	originService "github.com/Avi18971911/Locus/internal/pipeline/origin/service"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	"github.com/Avi18971911/Locus/internal/pipeline/processor/model"
	"go.uber.org/zap"
)

// PickProcessor runs the buffer, scan and release cycle for one pick at a time. Every cycle holds
// the processor lock, so the scan always sees a frozen buffer.
type PickProcessor struct {
	mu      sync.Mutex
	buffer  *bufferService.PickBuffer
	store   *clusterService.ClusterStore
	matcher *clusterService.Matcher
	emitter *originService.OriginEmitter
	// Optional archive of every buffered pick.
	pickSink write_buffer.DatabaseWriteBuffer[pickModel.Pick]
	// Release touched clusters after every cycle instead of once at the end of input.
	releaseEachCycle bool
	logger           *zap.Logger
}

func NewPickProcessor(
	buffer *bufferService.PickBuffer,
	store *clusterService.ClusterStore,
	matcher *clusterService.Matcher,
	emitter *originService.OriginEmitter,
	pickSink write_buffer.DatabaseWriteBuffer[pickModel.Pick],
	releaseEachCycle bool,
	logger *zap.Logger,
) *PickProcessor {
	return &PickProcessor{
		buffer:           buffer,
		store:            store,
		matcher:          matcher,
		emitter:          emitter,
		pickSink:         pickSink,
		releaseEachCycle: releaseEachCycle,
		logger:           logger,
	}
}

// HandlePick buffers the pick, drops outdated clusters, rescans the whole buffer and releases the
// clusters touched by the scan. A pick that cannot be resolved, or that is already older than the
// retention window, leaves the state untouched and is not archived.
func (pp *PickProcessor) HandlePick(ctx context.Context, pick pickModel.Pick) ([]originModel.Origin, error) {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	buffered, err := pp.buffer.Add(pick)
	if errors.Is(err, bufferService.ErrOutsideWindow) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pick %s dropped: %w", pick.Id, err)
	}
	if pp.pickSink != nil {
		pp.pickSink.WriteToBuffer([]pickModel.Pick{*buffered})
	}

	pp.store.EvictOlderThan(pp.buffer.Cutoff())
	touched := pp.matcher.Scan(pp.buffer.Picks())
	if len(touched) > 0 {
		pp.logger.Info(
			"Clusters touched",
			zap.Uint64s("cluster_ids", touched),
			zap.Int("cluster_count", pp.store.Len()),
		)
	}
	if !pp.releaseEachCycle || len(touched) == 0 {
		return nil, nil
	}

	clusters := make([]*clusterModel.Cluster, 0, len(touched))
	for _, id := range touched {
		if cluster, ok := pp.store.Get(id); ok {
			clusters = append(clusters, cluster)
		}
	}
	origins, err := pp.emitter.Release(ctx, clusters)
	if err != nil {
		return origins, fmt.Errorf("error releasing clusters after pick %s: %w", pick.Id, err)
	}
	return origins, nil
}

// Finish releases every surviving cluster once when clusters are not released per cycle.
func (pp *PickProcessor) Finish(ctx context.Context) ([]originModel.Origin, error) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	if pp.releaseEachCycle {
		return nil, nil
	}
	clusters := pp.store.All()
	pp.logger.Info("Releasing final clusters", zap.Int("cluster_count", len(clusters)))
	origins, err := pp.emitter.Release(ctx, clusters)
	if err != nil {
		return origins, fmt.Errorf("error releasing final clusters: %w", err)
	}
	return origins, nil
}

func (pp *PickProcessor) Snapshot() model.Snapshot {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	picks := pp.buffer.Picks()
	pickIds := make([]string, len(picks))
	for i, pick := range picks {
		pickIds[i] = pick.Id
	}
	clusters := pp.store.All()
	summaries := make([]model.ClusterSummary, len(clusters))
	for i, cluster := range clusters {
		summaries[i] = model.ClusterSummary{
			Id:      cluster.Id,
			Len:     cluster.Len(),
			TMin:    cluster.TMin(),
			TMax:    cluster.TMax(),
			PickIds: cluster.PickIds(),
		}
	}
	return model.Snapshot{
		Buffer: model.BufferSummary{
			Len:                pp.buffer.Len(),
			Earliest:           pp.buffer.Earliest(),
			Latest:             pp.buffer.Latest(),
			MaxIntervalSeconds: pp.buffer.MaxInterval().Seconds(),
			PickIds:            pickIds,
		},
		Clusters: summaries,
	}
}
