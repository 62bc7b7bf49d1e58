package service

import (
	"testing"
	"time"

	bufferService "github.com/Avi18971911/Locus/internal/pipeline/buffer/service"
	centroidService "github.com/Avi18971911/Locus/internal/pipeline/centroid/service"
	clusterService "github.com/Avi18971911/Locus/internal/pipeline/cluster/service"
	inventoryModel "github.com/Avi18971911/Locus/internal/pipeline/inventory/model"
	inventoryService "github.com/Avi18971911/Locus/internal/pipeline/inventory/service"
	originService "github.com/Avi18971911/Locus/internal/pipeline/origin/service"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	processorService "github.com/Avi18971911/Locus/internal/pipeline/processor/service"
	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func station(code string, lat, lon float64) inventoryModel.Station {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	return inventoryModel.Station{
		Code:        code,
		Epoch:       inventoryModel.Epoch{Start: &start},
		Coordinates: &pickModel.Coordinates{Latitude: lat, Longitude: lon},
	}
}

func TestDataPipeline(t *testing.T) {
	logger := zap.NewNop()
	inventory := &inventoryModel.Inventory{Networks: []inventoryModel.Network{{
		Code: "net1",
		Stations: []inventoryModel.Station{
			station("sta1", 0.0, 0.0),
			station("sta2", 0.05, 0.0),
			station("sta3", 0.03, 0.02),
		},
	}}}
	opts := pickModel.IdentityKeyOptions{WithLocation: true}
	resolver, err := inventoryService.NewCachedCoordinateResolver(inventory, opts, 100, logger)
	require.Nil(t, err)

	store := clusterService.NewClusterStore(logger)
	matcher := clusterService.NewMatcher(store, clusterService.MatcherConfig{
		MaxPickDelay:      120 * time.Second,
		MinPickDistanceKm: 1,
		MaxPickDistanceKm: 50,
		IdentityKey:       opts,
	}, logger)
	acc := originService.NewAccumulator(0)
	emitter := originService.NewOriginEmitter(
		centroidService.NewCentroidEstimator(logger),
		originService.NewOriginBuilder(originService.BuilderConfig{PhaseCode: "P"}),
		originService.NewCentroidLocator(),
		acc,
		originService.EmitterConfig{ReleaseCluster: true},
		logger,
	)
	processor := processorService.NewPickProcessor(
		bufferService.NewPickBuffer(resolver, time.Hour, logger),
		store,
		matcher,
		emitter,
		nil,
		true,
		logger,
	)
	pipeline := NewDataPipeline(processor, EventBus.New(), "PICK", logger)
	require.Nil(t, pipeline.Start())

	t.Run("should process submitted picks in order", func(t *testing.T) {
		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		for i, code := range []string{"sta1", "sta2", "sta3", "unknown"} {
			pick := pickModel.Pick{
				Id:         code,
				WaveformID: pickModel.WaveformID{NetworkCode: "net1", StationCode: code},
				Time:       base.Add(time.Duration(i*30) * time.Second),
			}
			require.Nil(t, pipeline.Submit(pick))
		}
		pipeline.Wait()

		snapshot := processor.Snapshot()
		assert.Equal(t, []string{"sta1", "sta2", "sta3"}, snapshot.Buffer.PickIds)
		require.Len(t, snapshot.Clusters, 1)
		assert.Equal(t, 3, snapshot.Clusters[0].Len)
		assert.Len(t, acc.Origins(), 2)
	})
}
