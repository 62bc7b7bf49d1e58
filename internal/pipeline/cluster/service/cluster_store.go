package service

import (
	"fmt"
	"time"

	"github.com/Avi18971911/Locus/internal/pipeline/cluster/model"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	"go.uber.org/zap"
)

// ClusterStore keeps clusters in creation order. Cluster ids are never reused.
type ClusterStore struct {
	clusters []*model.Cluster
	nextId   uint64
	logger   *zap.Logger
}

func NewClusterStore(logger *zap.Logger) *ClusterStore {
	return &ClusterStore{
		clusters: make([]*model.Cluster, 0),
		logger:   logger,
	}
}

func (cs *ClusterStore) Create(first, second *pickModel.Pick) *model.Cluster {
	cluster := model.NewCluster(cs.nextId, first, second)
	cs.nextId++
	cs.clusters = append(cs.clusters, cluster)
	return cluster
}

func (cs *ClusterStore) Grow(id uint64, pick *pickModel.Pick) error {
	cluster, ok := cs.Get(id)
	if !ok {
		return fmt.Errorf("cluster %d: %w", id, ErrClusterNotFound)
	}
	cluster.Picks = append(cluster.Picks, pick)
	return nil
}

func (cs *ClusterStore) Get(id uint64) (*model.Cluster, bool) {
	for _, cluster := range cs.clusters {
		if cluster.Id == id {
			return cluster, true
		}
	}
	return nil, false
}

// ClustersContaining lists the ids of every cluster holding the pick. More than one id is an
// integrity fault.
func (cs *ClusterStore) ClustersContaining(pick *pickModel.Pick) []uint64 {
	ids := make([]uint64, 0, 1)
	for _, cluster := range cs.clusters {
		if cluster.Contains(pick) {
			ids = append(ids, cluster.Id)
		}
	}
	return ids
}

// EvictOlderThan drops every cluster whose latest pick is before cutoff and returns their ids.
func (cs *ClusterStore) EvictOlderThan(cutoff time.Time) []uint64 {
	evicted := make([]uint64, 0)
	kept := cs.clusters[:0]
	for _, cluster := range cs.clusters {
		if cluster.TMax().Before(cutoff) {
			cs.logger.Debug(
				"Outdated cluster removed",
				zap.Uint64("cluster_id", cluster.Id),
				zap.Time("tmax", cluster.TMax()),
			)
			evicted = append(evicted, cluster.Id)
			continue
		}
		kept = append(kept, cluster)
	}
	for i := len(kept); i < len(cs.clusters); i++ {
		cs.clusters[i] = nil
	}
	cs.clusters = kept
	return evicted
}

// All returns the clusters in creation order.
func (cs *ClusterStore) All() []*model.Cluster {
	clusters := make([]*model.Cluster, len(cs.clusters))
	copy(clusters, cs.clusters)
	return clusters
}

func (cs *ClusterStore) Len() int {
	return len(cs.clusters)
}

// membership indexes the clusters of every clustered pick.
func (cs *ClusterStore) membership() map[*pickModel.Pick][]uint64 {
	index := make(map[*pickModel.Pick][]uint64)
	for _, cluster := range cs.clusters {
		for _, pick := range cluster.Picks {
			ids := index[pick]
			if len(ids) > 0 && ids[len(ids)-1] == cluster.Id {
				continue
			}
			index[pick] = append(ids, cluster.Id)
		}
	}
	return index
}
