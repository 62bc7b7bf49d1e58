package service

import (
	"time"

	centroidService "github.com/Avi18971911/Locus/internal/pipeline/centroid/service"
	clusterModel "github.com/Avi18971911/Locus/internal/pipeline/cluster/model"
	originModel "github.com/Avi18971911/Locus/internal/pipeline/origin/model"
	"github.com/google/uuid"
)

const publicIdPrefix = "Origin/"

type BuilderConfig struct {
	AgencyId  string
	Author    string
	PhaseCode string
	// AssignPublicId gives every origin a unique public id so that it can be stored.
	AssignPublicId bool
}

type OriginBuilder struct {
	config BuilderConfig
	now    func() time.Time
}

func NewOriginBuilder(config BuilderConfig) *OriginBuilder {
	return &OriginBuilder{
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Build turns a centroid estimate into an origin with one arrival per cluster pick, in cluster order.
func (ob *OriginBuilder) Build(
	cluster *clusterModel.Cluster,
	estimate centroidService.Estimate,
) originModel.Origin {
	now := ob.now()
	arrivals := make([]originModel.Arrival, len(cluster.Picks))
	for i, pick := range cluster.Picks {
		arrivals[i] = originModel.Arrival{
			PickId:   pick.Id,
			Phase:    ob.config.PhaseCode,
			TimeUsed: true,
			Weight:   estimate.Weights[i],
		}
	}

	origin := originModel.Origin{
		ClusterId:        cluster.Id,
		Latitude:         estimate.Latitude,
		Longitude:        estimate.Longitude,
		Depth:            estimate.Depth,
		Time:             estimate.Time,
		MethodId:         originModel.WeightedAverageMethod,
		Type:             originModel.CentroidOriginType,
		EvaluationMode:   originModel.AutomaticEvaluationMode,
		EvaluationStatus: originModel.PreliminaryEvaluationStatus,
		CreationInfo: originModel.CreationInfo{
			AgencyId:         ob.config.AgencyId,
			Author:           ob.config.Author,
			CreationTime:     now,
			ModificationTime: now,
		},
		Quality: originModel.OriginQuality{
			AssociatedPhaseCount: cluster.Len(),
			UsedPhaseCount:       cluster.Len(),
		},
		Arrivals: arrivals,
	}
	if ob.config.AssignPublicId {
		origin.PublicId = publicIdPrefix + uuid.NewString()
	}
	return origin
}
