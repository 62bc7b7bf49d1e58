package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// ErrorMessage is the body of every failed request
// @swagger:model ErrorMessage
type ErrorMessage struct {
	Message string `json:"message"`
}

func HttpError(w http.ResponseWriter, message string, code int, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorMessage{Message: message}); err != nil {
		logger.Error("Error encountered when encoding error response", zap.Error(err))
	}
}

func writeJson(w http.ResponseWriter, body interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Error encountered when encoding response", zap.Error(err))
	}
}

var (
	ErrNoId         = errors.New("no pick ID provided")
	ErrNoStation    = errors.New("no network or station code provided")
	ErrNoTime       = errors.New("no pick time provided")
	ErrInvalidQuery = errors.New("invalid query parameter")
)
