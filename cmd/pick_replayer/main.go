// pick_replayer sends the picks of a batch file to a running locus as OTLP log records.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	logsServer "github.com/Avi18971911/Locus/internal/otel_server/log/server"
	batchService "github.com/Avi18971911/Locus/internal/pipeline/batch/service"
	protoLogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonV1 "go.opentelemetry.io/proto/otlp/common/v1"
	v1 "go.opentelemetry.io/proto/otlp/logs/v1"
	resourceV1 "go.opentelemetry.io/proto/otlp/resource/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const serviceName = "pick-replayer"

type options struct {
	inputFile string
	format    string
	address   string
	batchSize int
	delay     time.Duration
}

func main() {
	opts := &options{}
	rootCmd := newRootCommand(opts)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func replay(ctx context.Context, opts *options, logger *zap.Logger) error {
	format, err := batchService.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	picks, err := batchService.LoadBatch(opts.inputFile, format, 0)
	if err != nil {
		return err
	}

	conn, err := grpc.NewClient(opts.address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", opts.address, err)
	}
	defer conn.Close()
	client := protoLogs.NewLogsServiceClient(conn)

	batchSize := opts.batchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	sent := 0
	for start := 0; start < len(picks); start += batchSize {
		end := min(start+batchSize, len(picks))
		records := make([]*v1.LogRecord, 0, end-start)
		for _, pick := range picks[start:end] {
			records = append(records, logsServer.PickRecord(pick))
		}
		res, err := client.Export(ctx, exportRequest(records))
		if err != nil {
			return fmt.Errorf("failed to export picks %d to %d: %w", start, end, err)
		}
		if res.PartialSuccess != nil && res.PartialSuccess.RejectedLogRecords > 0 {
			logger.Warn("Picks rejected",
				zap.Int64("rejected", res.PartialSuccess.RejectedLogRecords),
				zap.String("message", res.PartialSuccess.ErrorMessage),
			)
		}
		sent += len(records)
		if opts.delay > 0 && end < len(picks) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.delay):
			}
		}
	}
	logger.Info("Picks have been sent", zap.Int("count", sent), zap.String("address", opts.address))
	return nil
}

func exportRequest(records []*v1.LogRecord) *protoLogs.ExportLogsServiceRequest {
	return &protoLogs.ExportLogsServiceRequest{
		ResourceLogs: []*v1.ResourceLogs{{
			Resource: &resourceV1.Resource{
				Attributes: []*commonV1.KeyValue{{
					Key:   "service.name",
					Value: &commonV1.AnyValue{Value: &commonV1.AnyValue_StringValue{StringValue: serviceName}},
				}},
			},
			ScopeLogs: []*v1.ScopeLogs{{LogRecords: records}},
		}},
	}
}
