package handler

import (
	"net/http"

	processorModel "github.com/Avi18971911/Locus/internal/pipeline/processor/model"
	"go.uber.org/zap"
)

type Snapshotter interface {
	Snapshot() processorModel.Snapshot
}

// ClustersHandler creates a handler listing the live clusters.
// @Summary Get the live clusters.
// @Tags state
// @Produce json
// @Success 200 {array} processorModel.ClusterSummary "Clusters in creation order"
// @Router /clusters [get]
func ClustersHandler(s Snapshotter, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, s.Snapshot().Clusters, logger)
	}
}

// BufferHandler creates a handler describing the pick buffer.
// @Summary Get the pick buffer summary.
// @Tags state
// @Produce json
// @Success 200 {object} processorModel.BufferSummary "Pick buffer summary"
// @Router /buffer [get]
func BufferHandler(s Snapshotter, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, s.Snapshot().Buffer, logger)
	}
}

func HealthHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, map[string]string{"status": "ok"}, logger)
	}
}
