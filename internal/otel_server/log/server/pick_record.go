package server

import (
	"time"

	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	commonV1 "go.opentelemetry.io/proto/otlp/common/v1"
	v1 "go.opentelemetry.io/proto/otlp/logs/v1"
)

// PickRecord encodes a pick as the log record Export accepts.
func PickRecord(pick pickModel.Pick) *v1.LogRecord {
	attributes := []*commonV1.KeyValue{
		stringAttribute(PickIdAttribute, pick.Id),
		stringAttribute(NetworkCodeAttribute, pick.WaveformID.NetworkCode),
		stringAttribute(StationCodeAttribute, pick.WaveformID.StationCode),
		stringAttribute(PickTimeAttribute, pick.Time.UTC().Format(time.RFC3339Nano)),
	}
	if pick.WaveformID.LocationCode != "" {
		attributes = append(attributes, stringAttribute(LocationCodeAttribute, pick.WaveformID.LocationCode))
	}
	if pick.WaveformID.ChannelCode != "" {
		attributes = append(attributes, stringAttribute(ChannelCodeAttribute, pick.WaveformID.ChannelCode))
	}
	if pick.PhaseHint != "" {
		attributes = append(attributes, stringAttribute(PhaseHintAttribute, pick.PhaseHint))
	}
	return &v1.LogRecord{
		TimeUnixNano:         uint64(pick.Time.UnixNano()),
		ObservedTimeUnixNano: uint64(time.Now().UnixNano()),
		SeverityNumber:       v1.SeverityNumber_SEVERITY_NUMBER_INFO,
		SeverityText:         "INFO",
		Body: &commonV1.AnyValue{
			Value: &commonV1.AnyValue_StringValue{StringValue: "pick " + pick.WaveformID.String()},
		},
		Attributes: attributes,
	}
}

func stringAttribute(key, value string) *commonV1.KeyValue {
	return &commonV1.KeyValue{
		Key:   key,
		Value: &commonV1.AnyValue{Value: &commonV1.AnyValue_StringValue{StringValue: value}},
	}
}
