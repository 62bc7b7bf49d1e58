package service

import (
	"errors"
	"fmt"
	"time"

	inventoryService "github.com/Avi18971911/Locus/internal/pipeline/inventory/service"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	"go.uber.org/zap"
)

// PickBuffer holds the resolved picks of the retention window, in insertion order.
// It is bounded by time only, not by count.
type PickBuffer struct {
	picks       []*pickModel.Pick
	resolver    inventoryService.CoordinateResolver
	maxInterval time.Duration
	logger      *zap.Logger
}

func NewPickBuffer(
	resolver inventoryService.CoordinateResolver,
	maxInterval time.Duration,
	logger *zap.Logger,
) *PickBuffer {
	return &PickBuffer{
		picks:       make([]*pickModel.Pick, 0),
		resolver:    resolver,
		maxInterval: maxInterval,
		logger:      logger,
	}
}

// Add resolves the pick coordinates and appends it. Picks whose instrument cannot be resolved are
// not buffered. After insertion every pick older than the retention window relative to the latest
// buffered pick is evicted. A pick evicted by its own insertion is reported with ErrOutsideWindow.
func (pb *PickBuffer) Add(pick pickModel.Pick) (*pickModel.Pick, error) {
	coordinates, err := pb.resolver.ResolveCoordinates(pick.WaveformID, pick.Time)
	if err != nil {
		pb.logger.Warn(
			"Station not in inventory, pick dropped",
			zap.String("pick_id", pick.Id),
			zap.String("waveform_id", pick.WaveformID.String()),
			zap.Time("time", pick.Time),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to resolve coordinates of pick %s: %w", pick.Id, err)
	}
	buffered := pick.WithCoordinates(coordinates)
	pb.picks = append(pb.picks, buffered)
	pb.evict()
	if pb.picks[len(pb.picks)-1] != buffered {
		pb.logger.Debug(
			"Pick older than the retention window, not buffered",
			zap.String("pick_id", pick.Id),
			zap.Time("time", pick.Time),
			zap.Time("latest", pb.Latest()),
		)
		return nil, fmt.Errorf("pick %s: %w", pick.Id, ErrOutsideWindow)
	}
	pb.logger.Debug(
		"Pick buffered",
		zap.String("pick_id", buffered.Id),
		zap.Time("earliest", pb.Earliest()),
		zap.Time("latest", pb.Latest()),
		zap.Int("len", pb.Len()),
	)
	return buffered, nil
}

func (pb *PickBuffer) evict() {
	latest := pb.Latest()
	if latest.Sub(pb.Earliest()) <= pb.maxInterval {
		return
	}
	kept := pb.picks[:0]
	for _, pick := range pb.picks {
		if latest.Sub(pick.Time) > pb.maxInterval {
			pb.logger.Debug("Pick evicted", zap.String("pick_id", pick.Id), zap.Time("time", pick.Time))
			continue
		}
		kept = append(kept, pick)
	}
	// release the tail so evicted picks are only referenced by clusters
	for i := len(kept); i < len(pb.picks); i++ {
		pb.picks[i] = nil
	}
	pb.picks = kept
}

// Cutoff is the oldest time still inside the retention window.
func (pb *PickBuffer) Cutoff() time.Time {
	return pb.Latest().Add(-pb.maxInterval)
}

func (pb *PickBuffer) MaxInterval() time.Duration {
	return pb.maxInterval
}

func (pb *PickBuffer) Earliest() time.Time {
	var earliest time.Time
	for i, pick := range pb.picks {
		if i == 0 || pick.Time.Before(earliest) {
			earliest = pick.Time
		}
	}
	return earliest
}

func (pb *PickBuffer) Latest() time.Time {
	var latest time.Time
	for i, pick := range pb.picks {
		if i == 0 || pick.Time.After(latest) {
			latest = pick.Time
		}
	}
	return latest
}

func (pb *PickBuffer) Len() int {
	return len(pb.picks)
}

// Picks returns the buffered picks in insertion order. The slice is a copy; the picks are shared.
func (pb *PickBuffer) Picks() []*pickModel.Pick {
	picks := make([]*pickModel.Pick, len(pb.picks))
	copy(picks, pb.picks)
	return picks
}

var (
	ErrOutsideWindow = errors.New("pick is outside the retention window")
)
