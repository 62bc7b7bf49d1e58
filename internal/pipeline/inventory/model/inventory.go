package model

import (
	"time"

	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
)

type Inventory struct {
	Networks []Network `json:"networks"`
}

// Epoch is the validity interval of a directory entry.
type Epoch struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// AvailableAt reports whether the entry is valid at t. An entry without a start time is never
// valid and an entry without an end time is always valid.
func (e Epoch) AvailableAt(t time.Time) bool {
	if e.Start == nil {
		return false
	}
	if e.End == nil {
		return true
	}
	return !t.Before(*e.Start) && !t.After(*e.End)
}

type Network struct {
	Code string `json:"code"`
	Epoch
	Stations []Station `json:"stations"`
}

type Station struct {
	Code string `json:"code"`
	Epoch
	Coordinates *pickModel.Coordinates `json:"coordinates,omitempty"`
	Locations   []SensorLocation       `json:"locations,omitempty"`
}

type SensorLocation struct {
	Code string `json:"code"`
	Epoch
	Coordinates *pickModel.Coordinates `json:"coordinates,omitempty"`
	Streams     []Stream               `json:"streams,omitempty"`
}

type Stream struct {
	Code string `json:"code"`
	Epoch
	Coordinates *pickModel.Coordinates `json:"coordinates,omitempty"`
}
