package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Avi18971911/Locus/internal/db/write_buffer"
	"github.com/Avi18971911/Locus/internal/pipeline/event_bus"
	originModel "github.com/Avi18971911/Locus/internal/pipeline/origin/model"
	"go.uber.org/zap"
)

// Publisher hands a released origin to its destination. Failures are reported, never retried.
type Publisher interface {
	Publish(ctx context.Context, origin originModel.Origin) error
}

// TestPublisher drops every origin and only logs it.
type TestPublisher struct {
	logger *zap.Logger
}

func NewTestPublisher(logger *zap.Logger) *TestPublisher {
	return &TestPublisher{logger: logger}
}

func (tp *TestPublisher) Publish(_ context.Context, origin originModel.Origin) error {
	tp.logger.Info(
		"Test mode, origin not sent",
		zap.Uint64("cluster_id", origin.ClusterId),
		zap.Time("time", origin.Time),
	)
	return nil
}

type BusPublisher struct {
	bus               event_bus.LocusEventBus[originModel.OriginMessage, originModel.OriginMessage]
	topic             string
	releaseToDatabase bool
	logger            *zap.Logger
}

func NewBusPublisher(
	bus event_bus.LocusEventBus[originModel.OriginMessage, originModel.OriginMessage],
	topic string,
	releaseToDatabase bool,
	logger *zap.Logger,
) *BusPublisher {
	return &BusPublisher{
		bus:               bus,
		topic:             topic,
		releaseToDatabase: releaseToDatabase,
		logger:            logger,
	}
}

// Publish sends a notifier message when origins are released to the database and an artificial
// origin message otherwise.
func (bp *BusPublisher) Publish(_ context.Context, origin originModel.Origin) error {
	message := originModel.OriginMessage{Kind: originModel.ArtificialOriginMessage, Origin: origin}
	if bp.releaseToDatabase {
		if origin.PublicId == "" {
			return ErrMissingPublicId
		}
		message.Kind = originModel.NotifierMessage
	}
	if err := bp.bus.Publish(bp.topic, message); err != nil {
		return fmt.Errorf("error publishing origin to topic %s: %w", bp.topic, err)
	}
	bp.logger.Info(
		"Sent origin",
		zap.String("public_id", origin.PublicId),
		zap.String("kind", string(message.Kind)),
	)
	return nil
}

// DatabasePublisher queues origins for bulk indexing.
type DatabasePublisher struct {
	buffer write_buffer.DatabaseWriteBuffer[originModel.Origin]
}

func NewDatabasePublisher(buffer write_buffer.DatabaseWriteBuffer[originModel.Origin]) *DatabasePublisher {
	return &DatabasePublisher{buffer: buffer}
}

func (dp *DatabasePublisher) Publish(_ context.Context, origin originModel.Origin) error {
	if origin.PublicId == "" {
		return ErrMissingPublicId
	}
	dp.buffer.WriteToBuffer([]originModel.Origin{origin})
	return nil
}

func (dp *DatabasePublisher) Flush(ctx context.Context) error {
	return dp.buffer.Flush(ctx)
}

// MultiPublisher publishes to every publisher and joins their errors.
type MultiPublisher struct {
	publishers []Publisher
}

func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	return &MultiPublisher{publishers: publishers}
}

func (mp *MultiPublisher) Publish(ctx context.Context, origin originModel.Origin) error {
	var errs []error
	for _, publisher := range mp.publishers {
		if err := publisher.Publish(ctx, origin); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Accumulator collects origins in memory for the batch output document. With a positive limit only
// the most recent origins are kept.
type Accumulator struct {
	mu      sync.Mutex
	origins []originModel.Origin
	limit   int
}

func NewAccumulator(limit int) *Accumulator {
	return &Accumulator{origins: []originModel.Origin{}, limit: limit}
}

func (a *Accumulator) Publish(_ context.Context, origin originModel.Origin) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.origins = append(a.origins, origin)
	if a.limit > 0 && len(a.origins) > a.limit {
		a.origins = a.origins[len(a.origins)-a.limit:]
	}
	return nil
}

func (a *Accumulator) Origins() []originModel.Origin {
	a.mu.Lock()
	defer a.mu.Unlock()
	origins := make([]originModel.Origin, len(a.origins))
	copy(origins, a.origins)
	return origins
}

func (a *Accumulator) EventParameters() originModel.EventParameters {
	return originModel.EventParameters{Origins: a.Origins()}
}

var (
	ErrMissingPublicId = errors.New("origin has no public id")
)
