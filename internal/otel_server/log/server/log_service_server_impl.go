package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	protoLogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonV1 "go.opentelemetry.io/proto/otlp/common/v1"
	v1 "go.opentelemetry.io/proto/otlp/logs/v1"
	"go.uber.org/zap"
)

// Log record attributes describing a pick.
const (
	PickIdAttribute       = "pick.id"
	NetworkCodeAttribute  = "pick.network_code"
	StationCodeAttribute  = "pick.station_code"
	LocationCodeAttribute = "pick.location_code"
	ChannelCodeAttribute  = "pick.channel_code"
	PickTimeAttribute     = "pick.time"
	PhaseHintAttribute    = "pick.phase_hint"
)

type PickSubmitter interface {
	Submit(pick pickModel.Pick) error
}

// LogServiceServerImpl receives picks carried as OTLP log records. Records without a station are
// not picks and are ignored.
type LogServiceServerImpl struct {
	protoLogs.UnimplementedLogsServiceServer
	submitter PickSubmitter
	logger    *zap.Logger
}

func NewLogServiceServerImpl(
	logger *zap.Logger,
	submitter PickSubmitter,
) *LogServiceServerImpl {
	logger.Info("Creating new LogServiceServerImpl")
	return &LogServiceServerImpl{
		logger:    logger,
		submitter: submitter,
	}
}

func (lss *LogServiceServerImpl) Export(
	ctx context.Context,
	req *protoLogs.ExportLogsServiceRequest,
) (*protoLogs.ExportLogsServiceResponse, error) {
	var rejected int64
	for _, resourceLogs := range req.ResourceLogs {
		for _, scopeLog := range resourceLogs.ScopeLogs {
			for _, record := range scopeLog.LogRecords {
				pick, err := typePick(record)
				if errors.Is(err, ErrNotAPick) {
					continue
				}
				if err != nil {
					lss.logger.Warn("Invalid pick record", zap.Error(err))
					rejected++
					continue
				}
				if err := lss.submitter.Submit(pick); err != nil {
					lss.logger.Error("Failed to submit pick", zap.String("pick_id", pick.Id), zap.Error(err))
					rejected++
				}
			}
		}
	}
	res := &protoLogs.ExportLogsServiceResponse{}
	if rejected > 0 {
		res.PartialSuccess = &protoLogs.ExportLogsPartialSuccess{
			RejectedLogRecords: rejected,
			ErrorMessage:       "some pick records could not be accepted",
		}
	}
	return res, nil
}

func typePick(record *v1.LogRecord) (pickModel.Pick, error) {
	attributes := stringAttributes(record.Attributes)
	if attributes[StationCodeAttribute] == "" {
		return pickModel.Pick{}, ErrNotAPick
	}
	if attributes[NetworkCodeAttribute] == "" {
		return pickModel.Pick{}, fmt.Errorf("%w: %s", ErrMissingAttribute, NetworkCodeAttribute)
	}

	pickTime := time.Unix(0, int64(record.TimeUnixNano)).UTC()
	if value, ok := attributes[PickTimeAttribute]; ok {
		parsed, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return pickModel.Pick{}, fmt.Errorf("invalid %s %q: %w", PickTimeAttribute, value, err)
		}
		pickTime = parsed.UTC()
	} else if record.TimeUnixNano == 0 {
		return pickModel.Pick{}, fmt.Errorf("%w: %s", ErrMissingAttribute, PickTimeAttribute)
	}

	waveformId := pickModel.WaveformID{
		NetworkCode:  attributes[NetworkCodeAttribute],
		StationCode:  attributes[StationCodeAttribute],
		LocationCode: attributes[LocationCodeAttribute],
		ChannelCode:  attributes[ChannelCodeAttribute],
	}
	id := attributes[PickIdAttribute]
	if id == "" {
		id = generatePickId(pickTime, waveformId)
	}
	return pickModel.Pick{
		Id:         id,
		WaveformID: waveformId,
		Time:       pickTime,
		PhaseHint:  attributes[PhaseHintAttribute],
	}, nil
}

func stringAttributes(attributes []*commonV1.KeyValue) map[string]string {
	result := make(map[string]string, len(attributes))
	for _, attribute := range attributes {
		if attribute.Value == nil {
			continue
		}
		result[attribute.Key] = attribute.Value.GetStringValue()
	}
	return result
}

func generatePickId(timeStamp time.Time, waveformId pickModel.WaveformID) string {
	data := fmt.Sprintf("%s:%s", timeStamp.Format(time.RFC3339Nano), waveformId.String())
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

var (
	ErrNotAPick         = errors.New("log record does not describe a pick")
	ErrMissingAttribute = errors.New("missing pick attribute")
)
