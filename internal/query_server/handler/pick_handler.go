package handler

import (
	"encoding/json"
	"io"
	"net/http"

	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	"go.uber.org/zap"
)

type PickSubmitter interface {
	Submit(pick pickModel.Pick) error
}

// PickHandler creates a handler that queues a pick for clustering.
// @Summary Submit a pick.
// @Tags picks
// @Accept json
// @Produce json
// @Param pick body PickRequestDTO true "The pick to cluster"
// @Success 202 {object} PickResponseDTO "The accepted pick"
// @Failure 400 {object} ErrorMessage "Invalid pick"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router /picks [post]
func PickHandler(
	submitter PickSubmitter,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logger.Error("Error encountered when closing request body", zap.Error(err))
			}
		}(r.Body)

		var req PickRequestDTO
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logger.Error("Error encountered when decoding request body", zap.Error(err))
			HttpError(w, "Invalid request payload", http.StatusBadRequest, logger)
			return
		}

		err = validatePickRequest(req)
		if err != nil {
			logger.Error("Error encountered when validating request", zap.Error(err))
			HttpError(w, err.Error(), http.StatusBadRequest, logger)
			return
		}

		err = submitter.Submit(mapPickRequestToModel(req))
		if err != nil {
			logger.Error("Error encountered when submitting pick", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(PickResponseDTO{Id: req.Id}); err != nil {
			logger.Error("Error encountered when encoding response", zap.Error(err))
		}
	}
}

func validatePickRequest(req PickRequestDTO) error {
	if req.Id == "" {
		return ErrNoId
	}
	if req.NetworkCode == "" || req.StationCode == "" {
		return ErrNoStation
	}
	if req.Time.IsZero() {
		return ErrNoTime
	}
	return nil
}

func mapPickRequestToModel(req PickRequestDTO) pickModel.Pick {
	return pickModel.Pick{
		Id: req.Id,
		WaveformID: pickModel.WaveformID{
			NetworkCode:  req.NetworkCode,
			StationCode:  req.StationCode,
			LocationCode: req.LocationCode,
			ChannelCode:  req.ChannelCode,
		},
		Time:      req.Time.UTC(),
		PhaseHint: req.PhaseHint,
	}
}
