package service

import (
	"errors"
	"time"

	"github.com/Avi18971911/Locus/internal/pipeline/geo"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	"go.uber.org/zap"
)

type MatcherConfig struct {
	MaxPickDelay      time.Duration
	MinPickDistanceKm float64
	MaxPickDistanceKm float64
	IdentityKey       pickModel.IdentityKeyOptions
	EnableSameIdClust bool
}

// Matcher tests every pair of buffered picks against the clustering criteria and creates or
// grows clusters. A scan is quadratic in the buffer size, and the buffer is bounded by time
// only, so a sustained high pick rate degrades the scan quadratically.
type Matcher struct {
	store  *ClusterStore
	config MatcherConfig
	logger *zap.Logger
}

func NewMatcher(store *ClusterStore, config MatcherConfig, logger *zap.Logger) *Matcher {
	return &Matcher{
		store:  store,
		config: config,
		logger: logger,
	}
}

// Scan runs one pass over the whole buffer and returns the ids of the clusters created or grown
// during the pass, without duplicates, in the order they were first touched.
func (m *Matcher) Scan(picks []*pickModel.Pick) []uint64 {
	release := newReleaseSet()
	membership := m.store.membership()
	keys := make([]string, len(picks))
	for i, pick := range picks {
		keys[i] = pick.IdentityKey(m.config.IdentityKey)
	}

	for i := 0; i < len(picks); i++ {
		for j := i + 1; j < len(picks); j++ {
			first, second := picks[i], picks[j]
			if keys[i] == keys[j] && !m.config.EnableSameIdClust {
				continue
			}

			firstClusters, secondClusters := membership[first], membership[second]
			if len(firstClusters) > 1 || len(secondClusters) > 1 {
				m.logger.Warn(
					"Picks duplicated in clusters",
					zap.String("first_pick_id", first.Id),
					zap.Int("first_cluster_count", len(firstClusters)),
					zap.String("second_pick_id", second.Id),
					zap.Int("second_cluster_count", len(secondClusters)),
				)
			}
			if len(firstClusters) > 0 && len(secondClusters) > 0 {
				continue
			}

			distanceKm, ok := m.passesGates(first, second)
			if !ok {
				continue
			}

			switch {
			case len(firstClusters) > 0:
				if id, grown := m.grow(firstClusters[0], second, keys[j]); grown {
					membership[second] = []uint64{id}
					release.add(id)
				}
			case len(secondClusters) > 0:
				if id, grown := m.grow(secondClusters[0], first, keys[i]); grown {
					membership[first] = []uint64{id}
					release.add(id)
				}
			default:
				cluster := m.store.Create(first, second)
				membership[first] = []uint64{cluster.Id}
				membership[second] = []uint64{cluster.Id}
				release.add(cluster.Id)
				m.logger.Info(
					"New cluster",
					zap.Uint64("cluster_id", cluster.Id),
					zap.String("first_key", keys[i]),
					zap.String("second_key", keys[j]),
					zap.Float64("distance_km", distanceKm),
					zap.Duration("delay", second.Time.Sub(first.Time)),
				)
			}
		}
	}

	m.logger.Debug("Scan complete", zap.Int("clusters", m.store.Len()), zap.Uint64s("release", release.ids))
	return release.ids
}

func (m *Matcher) passesGates(first, second *pickModel.Pick) (float64, bool) {
	if !first.HasCoordinates() || !second.HasCoordinates() {
		return 0, false
	}
	delay := first.Time.Sub(second.Time)
	if delay < 0 {
		delay = -delay
	}
	if delay > m.config.MaxPickDelay {
		return 0, false
	}
	distanceKm := geo.DistanceKm(
		first.Coordinates.Latitude,
		first.Coordinates.Longitude,
		second.Coordinates.Latitude,
		second.Coordinates.Longitude,
	)
	// colocated sensors never pair, even with a zero minimum
	if distanceKm == 0 || distanceKm > m.config.MaxPickDistanceKm || distanceKm < m.config.MinPickDistanceKm {
		return distanceKm, false
	}
	return distanceKm, true
}

func (m *Matcher) grow(id uint64, pick *pickModel.Pick, key string) (uint64, bool) {
	cluster, ok := m.store.Get(id)
	if !ok {
		m.logger.Error("Clustered pick refers to a missing cluster", zap.Uint64("cluster_id", id))
		return 0, false
	}
	if !m.config.EnableSameIdClust && cluster.HasIdentityKey(key, m.config.IdentityKey) {
		m.logger.Debug("Identity already in cluster", zap.String("key", key), zap.Uint64("cluster_id", id))
		return 0, false
	}
	if err := m.store.Grow(id, pick); err != nil {
		m.logger.Error("Failed to grow cluster", zap.Uint64("cluster_id", id), zap.Error(err))
		return 0, false
	}
	m.logger.Info("Upgrading cluster", zap.Uint64("cluster_id", id), zap.String("with", key), zap.Int("len", cluster.Len()))
	return id, true
}

type releaseSet struct {
	ids  []uint64
	seen map[uint64]struct{}
}

func newReleaseSet() *releaseSet {
	return &releaseSet{ids: make([]uint64, 0), seen: make(map[uint64]struct{})}
}

func (rs *releaseSet) add(id uint64) {
	if _, ok := rs.seen[id]; ok {
		return
	}
	rs.seen[id] = struct{}{}
	rs.ids = append(rs.ids, id)
}

var (
	ErrClusterNotFound = errors.New("cluster not found")
)
