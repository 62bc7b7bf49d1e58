package service

import (
	"context"
	"testing"
	"time"

	bufferService "github.com/Avi18971911/Locus/internal/pipeline/buffer/service"
	centroidService "github.com/Avi18971911/Locus/internal/pipeline/centroid/service"
	clusterService "github.com/Avi18971911/Locus/internal/pipeline/cluster/service"
	inventoryService "github.com/Avi18971911/Locus/internal/pipeline/inventory/service"
	originService "github.com/Avi18971911/Locus/internal/pipeline/origin/service"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeResolver struct {
	stations map[string]pickModel.Coordinates
}

func (f fakeResolver) ResolveCoordinates(id pickModel.WaveformID, _ time.Time) (pickModel.Coordinates, error) {
	if c, ok := f.stations[id.StationCode]; ok {
		return c, nil
	}
	return pickModel.Coordinates{}, inventoryService.ErrCoordinatesUnavailable
}

type fakePickSink struct {
	picks []pickModel.Pick
}

func (f *fakePickSink) WriteToBuffer(value []pickModel.Pick) {
	f.picks = append(f.picks, value...)
}

func (f *fakePickSink) Flush(context.Context) error {
	return nil
}

func pickAt(id, station string, offset time.Duration) pickModel.Pick {
	return pickModel.Pick{
		Id:         id,
		WaveformID: pickModel.WaveformID{NetworkCode: "net1", StationCode: station, ChannelCode: "HHZ"},
		Time:       epoch.Add(offset),
	}
}

func newProcessor(
	releaseEachCycle bool,
	maxInterval time.Duration,
	sink *fakePickSink,
) (*PickProcessor, *originService.Accumulator) {
	logger := zap.NewNop()
	resolver := fakeResolver{stations: map[string]pickModel.Coordinates{
		"sta1": {Latitude: 0.0, Longitude: 0.0},
		"sta2": {Latitude: 0.05, Longitude: 0.0},
		"sta3": {Latitude: 0.03, Longitude: 0.02},
		"sta4": {Latitude: 0.0, Longitude: 0.04},
	}}
	store := clusterService.NewClusterStore(logger)
	matcher := clusterService.NewMatcher(store, clusterService.MatcherConfig{
		MaxPickDelay:      120 * time.Second,
		MinPickDistanceKm: 1,
		MaxPickDistanceKm: 50,
		IdentityKey:       pickModel.IdentityKeyOptions{WithLocation: true},
	}, logger)
	acc := originService.NewAccumulator(0)
	emitter := originService.NewOriginEmitter(
		centroidService.NewCentroidEstimator(logger),
		originService.NewOriginBuilder(originService.BuilderConfig{PhaseCode: "P"}),
		originService.NewCentroidLocator(),
		acc,
		originService.EmitterConfig{ReleaseCluster: true, MinReleasedClusteredPicks: 2},
		logger,
	)
	buffer := bufferService.NewPickBuffer(resolver, maxInterval, logger)
	if sink == nil {
		return NewPickProcessor(buffer, store, matcher, emitter, nil, releaseEachCycle, logger), acc
	}
	return NewPickProcessor(buffer, store, matcher, emitter, sink, releaseEachCycle, logger), acc
}

func TestPickProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("should release a cluster on every growth in real time", func(t *testing.T) {
		processor, acc := newProcessor(true, time.Hour, nil)
		origins, err := processor.HandlePick(ctx, pickAt("A", "sta1", 0))
		require.Nil(t, err)
		assert.Empty(t, origins)

		origins, err = processor.HandlePick(ctx, pickAt("B", "sta2", 30*time.Second))
		require.Nil(t, err)
		require.Len(t, origins, 1)
		assert.Len(t, origins[0].Arrivals, 2)

		origins, err = processor.HandlePick(ctx, pickAt("C", "sta3", 60*time.Second))
		require.Nil(t, err)
		require.Len(t, origins, 1)
		assert.Len(t, origins[0].Arrivals, 3)
		assert.Equal(t, epoch, origins[0].Time)

		assert.Len(t, acc.Origins(), 2)
	})

	t.Run("should drop unresolved picks and leave the state untouched", func(t *testing.T) {
		processor, _ := newProcessor(true, time.Hour, nil)
		_, _ = processor.HandlePick(ctx, pickAt("A", "sta1", 0))
		_, err := processor.HandlePick(ctx, pickAt("X", "unknown", time.Second))
		assert.ErrorIs(t, err, inventoryService.ErrCoordinatesUnavailable)
		snapshot := processor.Snapshot()
		assert.Equal(t, 1, snapshot.Buffer.Len)
		assert.Equal(t, []string{"A"}, snapshot.Buffer.PickIds)
	})

	t.Run("should defer release to the end of input in batch mode", func(t *testing.T) {
		processor, acc := newProcessor(false, time.Hour, nil)
		for _, pick := range []pickModel.Pick{
			pickAt("A", "sta1", 0),
			pickAt("B", "sta2", 30*time.Second),
			pickAt("C", "sta3", 60*time.Second),
		} {
			origins, err := processor.HandlePick(ctx, pick)
			require.Nil(t, err)
			assert.Empty(t, origins)
		}
		assert.Empty(t, acc.Origins())

		origins, err := processor.Finish(ctx)
		require.Nil(t, err)
		require.Len(t, origins, 1)
		assert.Len(t, origins[0].Arrivals, 3)
		assert.Len(t, acc.Origins(), 1)
	})

	t.Run("should not release again at the end of input in real time", func(t *testing.T) {
		processor, _ := newProcessor(true, time.Hour, nil)
		_, _ = processor.HandlePick(ctx, pickAt("A", "sta1", 0))
		_, _ = processor.HandlePick(ctx, pickAt("B", "sta2", 30*time.Second))
		origins, err := processor.Finish(ctx)
		assert.Nil(t, err)
		assert.Empty(t, origins)
	})

	t.Run("should evict outdated clusters with the buffer window", func(t *testing.T) {
		processor, _ := newProcessor(true, 100*time.Second, nil)
		_, _ = processor.HandlePick(ctx, pickAt("A", "sta1", 0))
		_, _ = processor.HandlePick(ctx, pickAt("B", "sta2", 30*time.Second))
		require.Len(t, processor.Snapshot().Clusters, 1)

		_, err := processor.HandlePick(ctx, pickAt("D", "sta4", 200*time.Second))
		require.Nil(t, err)
		snapshot := processor.Snapshot()
		assert.Empty(t, snapshot.Clusters)
		assert.Equal(t, []string{"D"}, snapshot.Buffer.PickIds)
		assert.Equal(t, 100.0, snapshot.Buffer.MaxIntervalSeconds)
	})

	t.Run("should summarise clusters in the snapshot", func(t *testing.T) {
		processor, _ := newProcessor(true, time.Hour, nil)
		_, _ = processor.HandlePick(ctx, pickAt("A", "sta1", 0))
		_, _ = processor.HandlePick(ctx, pickAt("B", "sta2", 30*time.Second))
		snapshot := processor.Snapshot()
		require.Len(t, snapshot.Clusters, 1)
		cluster := snapshot.Clusters[0]
		assert.Equal(t, 2, cluster.Len)
		assert.Equal(t, epoch, cluster.TMin)
		assert.Equal(t, epoch.Add(30*time.Second), cluster.TMax)
		assert.Equal(t, []string{"A", "B"}, cluster.PickIds)
	})

	t.Run("should archive every buffered pick with coordinates", func(t *testing.T) {
		sink := &fakePickSink{}
		processor, _ := newProcessor(true, time.Hour, sink)
		_, _ = processor.HandlePick(ctx, pickAt("A", "sta1", 0))
		_, _ = processor.HandlePick(ctx, pickAt("X", "unknown", time.Second))
		require.Len(t, sink.picks, 1)
		assert.True(t, sink.picks[0].HasCoordinates())
	})

	t.Run("should neither archive nor scan a pick older than the window", func(t *testing.T) {
		sink := &fakePickSink{}
		processor, acc := newProcessor(true, time.Minute, sink)
		_, err := processor.HandlePick(ctx, pickAt("A", "sta1", 10*time.Minute))
		require.Nil(t, err)
		origins, err := processor.HandlePick(ctx, pickAt("late", "sta2", 0))
		require.Nil(t, err)
		assert.Empty(t, origins)

		require.Len(t, sink.picks, 1)
		assert.Equal(t, "A", sink.picks[0].Id)
		snapshot := processor.Snapshot()
		assert.Equal(t, []string{"A"}, snapshot.Buffer.PickIds)
		assert.Empty(t, snapshot.Clusters)
		assert.Empty(t, acc.Origins())
	})
}
