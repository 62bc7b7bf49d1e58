package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Avi18971911/Locus/internal/query_server/service/origin"
	"go.uber.org/zap"
)

// OriginsHandler creates a handler for the latest released origins.
// @Summary Get released origins, most recent first.
// @Tags origins
// @Produce json
// @Param start_time query string false "RFC 3339 lower bound on the origin time"
// @Param end_time query string false "RFC 3339 upper bound on the origin time"
// @Param cluster_id query int false "Only origins of this cluster"
// @Param size query int false "Maximum number of origins"
// @Success 200 {array} originModel.Origin "Released origins"
// @Failure 400 {object} ErrorMessage "Invalid query"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router /origins [get]
func OriginsHandler(
	ctx context.Context,
	s origin.OriginQueryService,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parseOriginQuery(r)
		if err != nil {
			logger.Error("Error encountered when parsing query", zap.Error(err))
			HttpError(w, err.Error(), http.StatusBadRequest, logger)
			return
		}

		origins, err := s.GetOrigins(ctx, params)
		if errors.Is(err, origin.ErrInvalidTime) {
			HttpError(w, err.Error(), http.StatusBadRequest, logger)
			return
		}
		if err != nil {
			logger.Error("Error encountered when getting origins", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
		writeJson(w, origins, logger)
	}
}

func parseOriginQuery(r *http.Request) (origin.SearchParams, error) {
	query := r.URL.Query()
	var params origin.SearchParams
	if v := query.Get("start_time"); v != "" {
		params.StartTime = &v
	}
	if v := query.Get("end_time"); v != "" {
		params.EndTime = &v
	}
	if v := query.Get("cluster_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return params, fmt.Errorf("%w: cluster_id %s", ErrInvalidQuery, v)
		}
		params.ClusterId = &id
	}
	if v := query.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 0 {
			return params, fmt.Errorf("%w: size %s", ErrInvalidQuery, v)
		}
		params.Size = size
	}
	return params, nil
}
