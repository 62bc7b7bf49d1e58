package service

import (
	"errors"
	"time"

	clusterModel "github.com/Avi18971911/Locus/internal/pipeline/cluster/model"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// WeightFloor keeps the weight of the latest pick above zero.
const WeightFloor = 0.01

type Estimate struct {
	Latitude  float64
	Longitude float64
	// Depth in kilometers below sea level
	Depth         float64
	Time          time.Time
	ReferencePick *pickModel.Pick
	Weights       []float64
	// EqualWeights is set when every pick shares one timestamp.
	EqualWeights bool
}

type CentroidEstimator struct {
	logger *zap.Logger
}

func NewCentroidEstimator(logger *zap.Logger) *CentroidEstimator {
	return &CentroidEstimator{logger: logger}
}

// Weights returns one weight per pick, in cluster order: (tmax - t) / (tmax - tmin) + 0.01.
// When all picks share one time the spread is zero and every pick weighs 1 instead;
// ErrDegenerateTimeSpread reports that case.
func (ce *CentroidEstimator) Weights(cluster *clusterModel.Cluster) ([]float64, error) {
	weights := make([]float64, cluster.Len())
	tmax := cluster.TMax()
	spread := tmax.Sub(cluster.TMin())
	if spread == 0 {
		for i := range weights {
			weights[i] = 1
		}
		return weights, ErrDegenerateTimeSpread
	}
	for i, pick := range cluster.Picks {
		weights[i] = float64(tmax.Sub(pick.Time))/float64(spread) + WeightFloor
	}
	return weights, nil
}

// Estimate computes the weighted mean of the pick coordinates and converts the mean elevation
// in meters into a depth in kilometers.
func (ce *CentroidEstimator) Estimate(cluster *clusterModel.Cluster) (Estimate, error) {
	if cluster == nil || cluster.Len() == 0 {
		return Estimate{}, ErrEmptyCluster
	}
	weights, err := ce.Weights(cluster)
	equalWeights := errors.Is(err, ErrDegenerateTimeSpread)
	if equalWeights {
		ce.logger.Warn(
			"Cluster has no temporal spread, using equal weights",
			zap.Uint64("cluster_id", cluster.Id),
			zap.Int("len", cluster.Len()),
		)
	}

	latitudes := make([]float64, cluster.Len())
	longitudes := make([]float64, cluster.Len())
	elevations := make([]float64, cluster.Len())
	for i, pick := range cluster.Picks {
		if !pick.HasCoordinates() {
			return Estimate{}, ErrMissingCoordinates
		}
		latitudes[i] = pick.Coordinates.Latitude
		longitudes[i] = pick.Coordinates.Longitude
		elevations[i] = pick.Coordinates.Elevation
	}

	reference := cluster.ReferencePick()
	return Estimate{
		Latitude:      stat.Mean(latitudes, weights),
		Longitude:     stat.Mean(longitudes, weights),
		Depth:         -stat.Mean(elevations, weights) / 1000,
		Time:          reference.Time,
		ReferencePick: reference,
		Weights:       weights,
		EqualWeights:  equalWeights,
	}, nil
}

var (
	ErrDegenerateTimeSpread = errors.New("cluster picks share a single time")
	ErrEmptyCluster         = errors.New("cluster has no picks")
	ErrMissingCoordinates   = errors.New("cluster pick has no coordinates")
)
