package origin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Avi18971911/Locus/internal/db/elasticsearch/bootstrapper"
	"github.com/Avi18971911/Locus/internal/db/elasticsearch/client"
	originModel "github.com/Avi18971911/Locus/internal/pipeline/origin/model"
	"go.uber.org/zap"
)

const timeout = 10 * time.Second
const DefaultQuerySize = 100

type SearchParams struct {
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	ClusterId *uint64 `json:"cluster_id,omitempty"`
	Size      int     `json:"size,omitempty"`
}

type OriginQueryService interface {
	GetOrigins(ctx context.Context, params SearchParams) ([]originModel.Origin, error)
}

// OriginService reads stored origins, most recently created first.
type OriginService struct {
	lc     client.LocusClient
	logger *zap.Logger
}

func NewOriginService(lc client.LocusClient, logger *zap.Logger) *OriginService {
	return &OriginService{
		lc:     lc,
		logger: logger,
	}
}

func (oqs *OriginService) GetOrigins(
	ctx context.Context,
	params SearchParams,
) ([]originModel.Origin, error) {
	queryJson, err := json.Marshal(getOriginsQuery(params))
	if err != nil {
		oqs.logger.Error("Error when marshalling query to JSON", zap.Error(err))
		return nil, err
	}
	size := querySize(params)
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res, err := oqs.lc.Search(queryCtx, string(queryJson), []string{bootstrapper.OriginIndexName}, &size)
	if err != nil {
		oqs.logger.Error("Error when searching for origins", zap.Error(err))
		return nil, err
	}
	origins, err := client.FromDocuments[originModel.Origin](res)
	if err != nil {
		return nil, fmt.Errorf("error converting search result to origins: %w", err)
	}
	return origins, nil
}

// RecentOriginSource holds the latest released origins, oldest first.
type RecentOriginSource interface {
	Origins() []originModel.Origin
}

// InMemoryOriginService serves the origins released by this process when no database is configured.
type InMemoryOriginService struct {
	source RecentOriginSource
}

func NewInMemoryOriginService(source RecentOriginSource) *InMemoryOriginService {
	return &InMemoryOriginService{source: source}
}

func (ims *InMemoryOriginService) GetOrigins(
	_ context.Context,
	params SearchParams,
) ([]originModel.Origin, error) {
	start, end, err := parseRange(params)
	if err != nil {
		return nil, err
	}
	size := querySize(params)
	all := ims.source.Origins()
	origins := make([]originModel.Origin, 0)
	for i := len(all) - 1; i >= 0 && len(origins) < size; i-- {
		origin := all[i]
		if params.ClusterId != nil && origin.ClusterId != *params.ClusterId {
			continue
		}
		if start != nil && origin.Time.Before(*start) {
			continue
		}
		if end != nil && origin.Time.After(*end) {
			continue
		}
		origins = append(origins, origin)
	}
	return origins, nil
}

func querySize(params SearchParams) int {
	if params.Size > 0 {
		return params.Size
	}
	return DefaultQuerySize
}

func parseRange(params SearchParams) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if params.StartTime != nil {
		t, err := time.Parse(time.RFC3339Nano, *params.StartTime)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: start time %s", ErrInvalidTime, *params.StartTime)
		}
		start = &t
	}
	if params.EndTime != nil {
		t, err := time.Parse(time.RFC3339Nano, *params.EndTime)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: end time %s", ErrInvalidTime, *params.EndTime)
		}
		end = &t
	}
	return start, end, nil
}

var (
	ErrInvalidTime = errors.New("invalid time")
)
