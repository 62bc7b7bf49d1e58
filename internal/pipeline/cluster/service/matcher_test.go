package service

import (
	"fmt"
	"testing"
	"time"

	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newPick(id, station, channel string, offset time.Duration, lat, lon float64) *pickModel.Pick {
	return &pickModel.Pick{
		Id:          id,
		WaveformID:  pickModel.WaveformID{NetworkCode: "net1", StationCode: station, ChannelCode: channel},
		Time:        epoch.Add(offset),
		Coordinates: &pickModel.Coordinates{Latitude: lat, Longitude: lon},
	}
}

func defaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		MaxPickDelay:      120 * time.Second,
		MinPickDistanceKm: 1,
		MaxPickDistanceKm: 50,
		IdentityKey:       pickModel.IdentityKeyOptions{WithLocation: true},
	}
}

func newMatcher(config MatcherConfig, logger *zap.Logger) (*Matcher, *ClusterStore) {
	store := NewClusterStore(logger)
	return NewMatcher(store, config, logger), store
}

func TestMatcher(t *testing.T) {
	logger := zap.NewNop()
	a := newPick("A", "sta1", "HHZ", 0, 0.0, 0.0)
	b := newPick("B", "sta2", "HHZ", 30*time.Second, 0.05, 0.0)
	c := newPick("C", "sta3", "HHZ", 60*time.Second, 0.03, 0.02)

	t.Run("should create a cluster from two compatible picks", func(t *testing.T) {
		matcher, store := newMatcher(defaultMatcherConfig(), logger)
		released := matcher.Scan([]*pickModel.Pick{a, b})
		require.Equal(t, []uint64{0}, released)
		cluster, ok := store.Get(0)
		require.True(t, ok)
		assert.Equal(t, []string{"A", "B"}, cluster.PickIds())
	})

	t.Run("should grow a cluster with an unclustered pick", func(t *testing.T) {
		matcher, store := newMatcher(defaultMatcherConfig(), logger)
		matcher.Scan([]*pickModel.Pick{a, b})
		released := matcher.Scan([]*pickModel.Pick{a, b, c})
		assert.Equal(t, []uint64{0}, released)
		assert.Equal(t, 1, store.Len())
		cluster, _ := store.Get(0)
		assert.Equal(t, []string{"A", "B", "C"}, cluster.PickIds())
	})

	t.Run("should release nothing when the buffer is unchanged", func(t *testing.T) {
		matcher, _ := newMatcher(defaultMatcherConfig(), logger)
		matcher.Scan([]*pickModel.Pick{a, b})
		assert.Empty(t, matcher.Scan([]*pickModel.Pick{a, b}))
	})

	t.Run("should reject pairs beyond the maximum distance", func(t *testing.T) {
		far := newPick("F", "sta9", "HHZ", 30*time.Second, 1.0, 0.0)
		matcher, store := newMatcher(defaultMatcherConfig(), logger)
		assert.Empty(t, matcher.Scan([]*pickModel.Pick{a, far}))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("should reject pairs closer than the minimum distance", func(t *testing.T) {
		near := newPick("N", "sta9", "HHZ", 30*time.Second, 0.005, 0.0)
		matcher, store := newMatcher(defaultMatcherConfig(), logger)
		assert.Empty(t, matcher.Scan([]*pickModel.Pick{a, near}))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("should reject colocated picks even without a minimum distance", func(t *testing.T) {
		colocated := newPick("Z", "sta9", "HHZ", 30*time.Second, 0.0, 0.0)
		config := defaultMatcherConfig()
		config.MinPickDistanceKm = 0
		matcher, store := newMatcher(config, logger)
		assert.Empty(t, matcher.Scan([]*pickModel.Pick{a, colocated}))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("should reject pairs further apart in time than the maximum delay", func(t *testing.T) {
		late := newPick("L", "sta2", "HHZ", 121*time.Second, 0.05, 0.0)
		matcher, store := newMatcher(defaultMatcherConfig(), logger)
		assert.Empty(t, matcher.Scan([]*pickModel.Pick{a, late}))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("should accept pairs exactly at the maximum delay", func(t *testing.T) {
		edge := newPick("E", "sta2", "HHZ", 120*time.Second, 0.05, 0.0)
		matcher, _ := newMatcher(defaultMatcherConfig(), logger)
		assert.Equal(t, []uint64{0}, matcher.Scan([]*pickModel.Pick{edge, a}))
	})

	t.Run("should never pair picks of one instrument", func(t *testing.T) {
		other := newPick("A2", "sta1", "HHN", 10*time.Second, 0.05, 0.0)
		matcher, store := newMatcher(defaultMatcherConfig(), logger)
		assert.Empty(t, matcher.Scan([]*pickModel.Pick{a, other}))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("should pair channels separately when channels are distinguished", func(t *testing.T) {
		other := newPick("A2", "sta1", "HHN", 10*time.Second, 0.05, 0.0)
		config := defaultMatcherConfig()
		config.IdentityKey.WithChannel = true
		matcher, store := newMatcher(config, logger)
		assert.Equal(t, []uint64{0}, matcher.Scan([]*pickModel.Pick{a, other}))
		assert.Equal(t, 1, store.Len())
	})

	t.Run("should pair one instrument when same identity clustering is enabled", func(t *testing.T) {
		other := newPick("A2", "sta1", "HHN", 10*time.Second, 0.05, 0.0)
		config := defaultMatcherConfig()
		config.EnableSameIdClust = true
		matcher, _ := newMatcher(config, logger)
		assert.Equal(t, []uint64{0}, matcher.Scan([]*pickModel.Pick{a, other}))
	})

	t.Run("should not grow a cluster with an instrument it already holds", func(t *testing.T) {
		again := newPick("B2", "sta2", "HHE", 40*time.Second, 0.02, 0.0)
		matcher, store := newMatcher(defaultMatcherConfig(), logger)
		matcher.Scan([]*pickModel.Pick{a, b})
		assert.Empty(t, matcher.Scan([]*pickModel.Pick{a, b, again}))
		cluster, _ := store.Get(0)
		assert.Equal(t, 2, cluster.Len())
	})

	t.Run("should skip pairs whose picks are both clustered", func(t *testing.T) {
		d := newPick("D", "sta4", "HHZ", 5*time.Second, 10.0, 10.0)
		e := newPick("E", "sta5", "HHZ", 15*time.Second, 10.05, 10.0)
		matcher, store := newMatcher(defaultMatcherConfig(), logger)
		assert.Equal(t, []uint64{0, 1}, matcher.Scan([]*pickModel.Pick{a, d, b, e}))
		assert.Equal(t, 2, store.Len())
		assert.Empty(t, matcher.Scan([]*pickModel.Pick{a, d, b, e}))
	})

	t.Run("should log duplicated membership and keep scanning", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		matcher, store := newMatcher(defaultMatcherConfig(), zap.New(core))
		store.Create(a, b)
		store.Create(a, c)
		released := matcher.Scan([]*pickModel.Pick{a, b, c})
		assert.Empty(t, released)
		assert.NotZero(t, logs.FilterMessage("Picks duplicated in clusters").Len())
		assert.Equal(t, 2, store.Len())
	})

	t.Run("should visit pairs in buffer order", func(t *testing.T) {
		var picks []*pickModel.Pick
		for i := 0; i < 4; i++ {
			picks = append(picks, newPick(fmt.Sprintf("P%d", i), fmt.Sprintf("s%d", i), "HHZ",
				time.Duration(i)*time.Second, float64(i)*0.02, 0))
		}
		matcher, store := newMatcher(defaultMatcherConfig(), logger)
		assert.Equal(t, []uint64{0}, matcher.Scan(picks))
		cluster, _ := store.Get(0)
		assert.Equal(t, []string{"P0", "P1", "P2", "P3"}, cluster.PickIds())
	})
}

func TestClusterStore(t *testing.T) {
	logger := zap.NewNop()
	a := newPick("A", "sta1", "HHZ", 0, 0, 0)
	b := newPick("B", "sta2", "HHZ", 30*time.Second, 0.05, 0)
	c := newPick("C", "sta3", "HHZ", 200*time.Second, 0.05, 0.05)
	d := newPick("D", "sta4", "HHZ", 230*time.Second, 0.05, 0.1)

	t.Run("should assign increasing ids that are never reused", func(t *testing.T) {
		store := NewClusterStore(logger)
		first := store.Create(a, b)
		store.EvictOlderThan(epoch.Add(time.Hour))
		second := store.Create(c, d)
		assert.Equal(t, uint64(0), first.Id)
		assert.Equal(t, uint64(1), second.Id)
	})

	t.Run("should evict clusters whose latest pick is before the cutoff", func(t *testing.T) {
		store := NewClusterStore(logger)
		store.Create(a, b)
		store.Create(c, d)
		evicted := store.EvictOlderThan(epoch.Add(100 * time.Second))
		assert.Equal(t, []uint64{0}, evicted)
		assert.Equal(t, 1, store.Len())
		_, ok := store.Get(0)
		assert.False(t, ok)
		assert.Empty(t, store.ClustersContaining(a))
	})

	t.Run("should keep clusters whose latest pick is at the cutoff", func(t *testing.T) {
		store := NewClusterStore(logger)
		store.Create(a, b)
		assert.Empty(t, store.EvictOlderThan(b.Time))
	})

	t.Run("should grow an existing cluster", func(t *testing.T) {
		store := NewClusterStore(logger)
		cluster := store.Create(a, b)
		require.Nil(t, store.Grow(cluster.Id, c))
		assert.Equal(t, []uint64{cluster.Id}, store.ClustersContaining(c))
		assert.ErrorIs(t, store.Grow(42, d), ErrClusterNotFound)
	})

	t.Run("should return clusters in creation order", func(t *testing.T) {
		store := NewClusterStore(logger)
		store.Create(c, d)
		store.Create(a, b)
		all := store.All()
		require.Len(t, all, 2)
		assert.Equal(t, "C", all[0].Picks[0].Id)
	})
}
