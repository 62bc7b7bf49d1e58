package router

import (
	"context"
	"net/http"

	"github.com/Avi18971911/Locus/internal/query_server/handler"
	"github.com/Avi18971911/Locus/internal/query_server/service/origin"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func CreateRouter(
	ctx context.Context,
	submitter handler.PickSubmitter,
	snapshotter handler.Snapshotter,
	originQueryService origin.OriginQueryService,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.Handle(
		"/picks", handler.PickHandler(
			submitter,
			logger,
		),
	).Methods("POST")

	r.Handle("/clusters", handler.ClustersHandler(snapshotter, logger)).Methods("GET")
	r.Handle("/buffer", handler.BufferHandler(snapshotter, logger)).Methods("GET")

	r.Handle(
		"/origins", handler.OriginsHandler(
			ctx,
			originQueryService,
			logger,
		),
	).Methods("GET")

	r.Handle("/health", handler.HealthHandler(logger)).Methods("GET")

	return r
}
