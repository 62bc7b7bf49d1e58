package model

import "time"

type BufferSummary struct {
	Len                int       `json:"len"`
	Earliest           time.Time `json:"earliest"`
	Latest             time.Time `json:"latest"`
	MaxIntervalSeconds float64   `json:"max_interval_seconds"`
	PickIds            []string  `json:"pick_ids"`
}

type ClusterSummary struct {
	Id      uint64    `json:"id"`
	Len     int       `json:"len"`
	TMin    time.Time `json:"tmin"`
	TMax    time.Time `json:"tmax"`
	PickIds []string  `json:"pick_ids"`
}

// Snapshot is a consistent view of the processor state between two cycles.
type Snapshot struct {
	Buffer   BufferSummary    `json:"buffer"`
	Clusters []ClusterSummary `json:"clusters"`
}
