package service

import (
	"context"

	clusterModel "github.com/Avi18971911/Locus/internal/pipeline/cluster/model"
	originModel "github.com/Avi18971911/Locus/internal/pipeline/origin/model"
)

// Locator refines a centroid origin into a located one.
type Locator interface {
	Locate(ctx context.Context, origin originModel.Origin, cluster *clusterModel.Cluster) (originModel.Origin, error)
}

// CentroidLocator performs no relocation and hands the centroid back unchanged.
type CentroidLocator struct{}

func NewCentroidLocator() *CentroidLocator {
	return &CentroidLocator{}
}

func (cl *CentroidLocator) Locate(
	_ context.Context,
	origin originModel.Origin,
	_ *clusterModel.Cluster,
) (originModel.Origin, error) {
	return origin, nil
}
