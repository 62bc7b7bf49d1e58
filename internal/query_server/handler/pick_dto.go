package handler

import "time"

// PickRequestDTO is a pick submitted for clustering
// @swagger:model PickRequestDTO
type PickRequestDTO struct {
	// The unique pick identifier
	Id           string    `json:"id"`
	NetworkCode  string    `json:"network_code"`
	StationCode  string    `json:"station_code"`
	LocationCode string    `json:"location_code"`
	ChannelCode  string    `json:"channel_code"`
	Time         time.Time `json:"time"`
	// Optional phase hint, not used for clustering
	PhaseHint string `json:"phase_hint,omitempty"`
}

// PickResponseDTO acknowledges a submitted pick
// @swagger:model PickResponseDTO
type PickResponseDTO struct {
	Id string `json:"id"`
}
