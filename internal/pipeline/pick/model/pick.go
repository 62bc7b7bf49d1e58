package model

import (
	"strings"
	"time"
)

// WaveformID identifies the instrument that produced a pick.
type WaveformID struct {
	NetworkCode  string `json:"network_code"`
	StationCode  string `json:"station_code"`
	LocationCode string `json:"location_code"`
	ChannelCode  string `json:"channel_code"`
}

func (w WaveformID) String() string {
	return strings.Join([]string{w.NetworkCode, w.StationCode, w.LocationCode, w.ChannelCode}, ".")
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Elevation in meters above sea level
	Elevation float64 `json:"elevation"`
}

// IdentityKeyOptions controls the granularity of the station identity key.
type IdentityKeyOptions struct {
	WithLocation bool
	WithChannel  bool
}

type Pick struct {
	Id          string       `json:"_id"`
	WaveformID  WaveformID   `json:"waveform_id"`
	Time        time.Time    `json:"time"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	PhaseHint   string       `json:"phase_hint,omitempty"`
}

// IdentityKey builds "NET.STA" optionally extended with the location and channel codes.
// Two picks with equal keys come from the same instrument.
func (p *Pick) IdentityKey(opts IdentityKeyOptions) string {
	var sb strings.Builder
	sb.WriteString(p.WaveformID.NetworkCode)
	sb.WriteByte('.')
	sb.WriteString(p.WaveformID.StationCode)
	if opts.WithLocation {
		sb.WriteByte('.')
		sb.WriteString(p.WaveformID.LocationCode)
	}
	if opts.WithChannel {
		sb.WriteByte('.')
		sb.WriteString(p.WaveformID.ChannelCode)
	}
	return sb.String()
}

// WithCoordinates returns a copy of the pick with its resolved coordinates attached.
func (p Pick) WithCoordinates(c Coordinates) *Pick {
	p.Coordinates = &c
	return &p
}

func (p *Pick) HasCoordinates() bool {
	return p.Coordinates != nil
}
