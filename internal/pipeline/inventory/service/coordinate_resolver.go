package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Avi18971911/Locus/internal/pipeline/inventory/model"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

const defaultCacheItems = 1 << 14

// CoordinateResolver resolves an instrument identity at a given time to a physical location.
type CoordinateResolver interface {
	ResolveCoordinates(id pickModel.WaveformID, t time.Time) (pickModel.Coordinates, error)
}

// CoordinateResolverImpl walks the station directory. Channel coordinates win over location
// coordinates, which win over station coordinates. The location and channel levels are only
// consulted when the matching identity granularity is enabled.
type CoordinateResolverImpl struct {
	inventory *model.Inventory
	opts      pickModel.IdentityKeyOptions
	cache     *ristretto.Cache
	logger    *zap.Logger
}

func NewCoordinateResolver(
	inventory *model.Inventory,
	opts pickModel.IdentityKeyOptions,
	logger *zap.Logger,
) *CoordinateResolverImpl {
	return &CoordinateResolverImpl{
		inventory: inventory,
		opts:      opts,
		logger:    logger,
	}
}

// NewCachedCoordinateResolver keeps the directory entries matching each identity in a ristretto
// cache so that repeated picks from the same instrument skip the directory walk. Time validity is
// still evaluated on every call.
func NewCachedCoordinateResolver(
	inventory *model.Inventory,
	opts pickModel.IdentityKeyOptions,
	maxItems int64,
	logger *zap.Logger,
) (*CoordinateResolverImpl, error) {
	if maxItems <= 0 {
		maxItems = defaultCacheItems
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinate cache: %w", err)
	}
	resolver := NewCoordinateResolver(inventory, opts, logger)
	resolver.cache = cache
	return resolver, nil
}

func (cr *CoordinateResolverImpl) ResolveCoordinates(
	id pickModel.WaveformID,
	t time.Time,
) (pickModel.Coordinates, error) {
	for _, station := range cr.candidates(id) {
		if !station.AvailableAt(t) {
			continue
		}
		if coordinates, ok := cr.resolveBelowStation(station, id, t); ok {
			return coordinates, nil
		}
		if station.Coordinates != nil {
			return *station.Coordinates, nil
		}
	}
	return pickModel.Coordinates{}, fmt.Errorf("%s at %s: %w", id.String(), t.Format(time.RFC3339Nano), ErrCoordinatesUnavailable)
}

func (cr *CoordinateResolverImpl) resolveBelowStation(
	station model.Station,
	id pickModel.WaveformID,
	t time.Time,
) (pickModel.Coordinates, bool) {
	if !cr.opts.WithLocation {
		return pickModel.Coordinates{}, false
	}
	for _, location := range station.Locations {
		if location.Code != id.LocationCode || !location.AvailableAt(t) {
			continue
		}
		if cr.opts.WithChannel {
			for _, stream := range location.Streams {
				if stream.Code != id.ChannelCode || !stream.AvailableAt(t) {
					continue
				}
				if stream.Coordinates != nil {
					return *stream.Coordinates, true
				}
			}
		}
		if location.Coordinates != nil {
			return *location.Coordinates, true
		}
	}
	return pickModel.Coordinates{}, false
}

// candidates returns every station epoch whose network and station codes match the identity.
func (cr *CoordinateResolverImpl) candidates(id pickModel.WaveformID) []model.Station {
	key := id.String()
	if cr.cache != nil {
		if value, found := cr.cache.Get(key); found {
			if stations, ok := value.([]model.Station); ok {
				return stations
			}
			cr.logger.Warn("Unexpected value type in coordinate cache", zap.String("key", key))
		}
	}

	stations := make([]model.Station, 0)
	if cr.inventory != nil {
		for _, network := range cr.inventory.Networks {
			if network.Code != id.NetworkCode {
				continue
			}
			for _, station := range network.Stations {
				if station.Code == id.StationCode {
					stations = append(stations, station)
				}
			}
		}
	}

	if cr.cache != nil {
		if !cr.cache.Set(key, stations, 1) {
			cr.logger.Debug("Coordinate cache rejected entry", zap.String("key", key))
		}
	}
	return stations
}

// Wait blocks until pending cache writes are visible.
func (cr *CoordinateResolverImpl) Wait() {
	if cr.cache != nil {
		cr.cache.Wait()
	}
}

func LoadInventoryFromFile(path string) (*model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory file: %w", err)
	}
	var inventory model.Inventory
	if err := json.Unmarshal(data, &inventory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inventory: %w", err)
	}
	return &inventory, nil
}

var (
	ErrCoordinatesUnavailable = errors.New("coordinates unavailable")
)
