package model

import (
	"time"

	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
)

type OriginType string

const (
	CentroidOriginType OriginType = "centroid"
)

type EvaluationMode string

const (
	AutomaticEvaluationMode EvaluationMode = "automatic"
)

type EvaluationStatus string

const (
	PreliminaryEvaluationStatus EvaluationStatus = "preliminary"
)

const WeightedAverageMethod = "weighted average"

type Origin struct {
	PublicId         string           `json:"_id,omitempty"`
	ClusterId        uint64           `json:"cluster_id"`
	Latitude         float64          `json:"latitude"`
	Longitude        float64          `json:"longitude"`
	Depth            float64          `json:"depth"`
	Time             time.Time        `json:"time"`
	MethodId         string           `json:"method_id"`
	Type             OriginType       `json:"type"`
	EvaluationMode   EvaluationMode   `json:"evaluation_mode"`
	EvaluationStatus EvaluationStatus `json:"evaluation_status"`
	CreationInfo     CreationInfo     `json:"creation_info"`
	Quality          OriginQuality    `json:"quality"`
	Arrivals         []Arrival        `json:"arrivals"`
}

type CreationInfo struct {
	AgencyId         string    `json:"agency_id"`
	Author           string    `json:"author"`
	CreationTime     time.Time `json:"creation_time"`
	ModificationTime time.Time `json:"modification_time"`
}

// OriginQuality only carries phase counts; gap, RMS and distance metrics are not computed.
type OriginQuality struct {
	AssociatedPhaseCount int `json:"associated_phase_count"`
	UsedPhaseCount       int `json:"used_phase_count"`
}

type Arrival struct {
	PickId   string  `json:"pick_id"`
	Phase    string  `json:"phase"`
	TimeUsed bool    `json:"time_used"`
	Weight   float64 `json:"weight"`
}

// EventParameters is the batch container: picks on input, origins on output.
type EventParameters struct {
	Picks   []pickModel.Pick `json:"picks,omitempty"`
	Origins []Origin         `json:"origins,omitempty"`
}

type MessageKind string

const (
	// NotifierMessage carries an origin with a public id meant to be stored.
	NotifierMessage MessageKind = "notifier"
	// ArtificialOriginMessage carries an origin without a public id.
	ArtificialOriginMessage MessageKind = "artificial"
)

type OriginMessage struct {
	Kind   MessageKind `json:"kind"`
	Origin Origin      `json:"origin"`
}
