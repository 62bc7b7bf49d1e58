package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Avi18971911/Locus/internal/config"
	"github.com/Avi18971911/Locus/internal/db/elasticsearch/bootstrapper"
	"github.com/Avi18971911/Locus/internal/db/elasticsearch/client"
	"github.com/Avi18971911/Locus/internal/db/write_buffer"
	logsServer "github.com/Avi18971911/Locus/internal/otel_server/log/server"
	dataPipelineService "github.com/Avi18971911/Locus/internal/pipeline/data_pipeline/service"
	"github.com/Avi18971911/Locus/internal/pipeline/event_bus"
	originModel "github.com/Avi18971911/Locus/internal/pipeline/origin/model"
	originService "github.com/Avi18971911/Locus/internal/pipeline/origin/service"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	"github.com/Avi18971911/Locus/internal/query_server/router"
	originQueryService "github.com/Avi18971911/Locus/internal/query_server/service/origin"
	"github.com/asaskevich/EventBus"
	"github.com/elastic/go-elasticsearch/v8"
	protoLogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	_ "google.golang.org/grpc/encoding/gzip"
)

const shutdownTimeout = 10 * time.Second

func runStream(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolver, err := newResolver(cfg, logger)
	if err != nil {
		return err
	}

	var lc client.LocusClient
	if len(cfg.ElasticsearchAddresses) > 0 {
		es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.ElasticsearchAddresses})
		if err != nil {
			return fmt.Errorf("failed to create elasticsearch client: %w", err)
		}
		bs := bootstrapper.NewBootstrapper(es, logger)
		if err := bs.BootstrapElasticsearch(); err != nil {
			return fmt.Errorf("failed to bootstrap elasticsearch: %w", err)
		}
		lc = client.NewLocusClientImpl(es, client.Async)
	}

	eventBus := EventBus.New()
	originBus := event_bus.NewLocusEventBus[originModel.OriginMessage, originModel.OriginMessage](eventBus, logger)
	recent := originService.NewAccumulator(cfg.RecentOrigins)

	var pickSink write_buffer.DatabaseWriteBuffer[pickModel.Pick]
	var originSink *originService.DatabasePublisher
	var publisher originService.Publisher
	if cfg.Test {
		publisher = originService.NewMultiPublisher(originService.NewTestPublisher(logger), recent)
	} else {
		err := originBus.Subscribe(
			cfg.OriginTopic,
			func(message originModel.OriginMessage) error {
				return recent.Publish(ctx, message.Origin)
			},
			false,
		)
		if err != nil {
			return fmt.Errorf("failed to subscribe to origin topic: %w", err)
		}
		publishers := []originService.Publisher{
			originService.NewBusPublisher(originBus, cfg.OriginTopic, cfg.ReleaseToDatabase, logger),
		}
		if lc != nil && cfg.ReleaseToDatabase {
			originSink = originService.NewDatabasePublisher(
				write_buffer.NewDatabaseWriteBufferImpl[originModel.Origin](
					lc,
					bootstrapper.OriginIndexName,
					cfg.WriteQueueSize,
					logger,
				),
			)
			publishers = append(publishers, originSink)
		}
		publisher = originService.NewMultiPublisher(publishers...)
	}
	if lc != nil {
		pickSink = write_buffer.NewDatabaseWriteBufferImpl[pickModel.Pick](
			lc,
			bootstrapper.PickIndexName,
			cfg.WriteQueueSize,
			logger,
		)
	}

	processor := newProcessor(cfg, resolver, publisher, pickSink, true, logger)
	pipeline := dataPipelineService.NewDataPipeline(processor, eventBus, cfg.PickTopic, logger)
	if err := pipeline.Start(); err != nil {
		return fmt.Errorf("failed to start data pipeline: %w", err)
	}

	listener, err := net.Listen("tcp", cfg.OtlpListen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.OtlpListen, err)
	}
	srv := grpc.NewServer()
	protoLogs.RegisterLogsServiceServer(srv, logsServer.NewLogServiceServerImpl(logger, pipeline))

	var queryService originQueryService.OriginQueryService = originQueryService.NewInMemoryOriginService(recent)
	if lc != nil {
		queryService = originQueryService.NewOriginService(lc, logger)
	}
	httpServer := &http.Server{
		Addr:    cfg.HttpListen,
		Handler: router.CreateRouter(ctx, pipeline, processor, queryService, logger),
	}

	serveErrors := make(chan error, 2)
	go func() {
		logger.Info("gRPC service started, listening for OpenTelemetry pick records", zap.String("address", cfg.OtlpListen))
		if err := srv.Serve(listener); err != nil {
			serveErrors <- fmt.Errorf("gRPC server failed: %w", err)
		}
	}()
	go func() {
		logger.Info("Starting query server", zap.String("address", cfg.HttpListen))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrors <- fmt.Errorf("query server failed: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case runErr = <-serveErrors:
		logger.Error("Server stopped", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	srv.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down query server", zap.Error(err))
	}
	pipeline.Wait()
	if originSink != nil {
		if err := originSink.Flush(shutdownCtx); err != nil {
			logger.Error("Failed to flush origins", zap.Error(err))
		}
	}
	if pickSink != nil {
		if err := pickSink.Flush(shutdownCtx); err != nil {
			logger.Error("Failed to flush picks", zap.Error(err))
		}
	}
	return runErr
}
