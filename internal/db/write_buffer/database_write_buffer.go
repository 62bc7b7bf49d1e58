package write_buffer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Avi18971911/Locus/internal/db/elasticsearch/client"
	"go.uber.org/zap"
)

const WriteQueueSize = 30
const flushTimeOut = 10 * time.Second

type DatabaseWriteBuffer[ValueType any] interface {
	// WriteToBuffer queues values and flushes in the background once the queue exceeds its size.
	WriteToBuffer(value []ValueType)
	// Flush writes everything queued so far.
	Flush(ctx context.Context) error
}

type DatabaseWriteBufferImpl[ValueType any] struct {
	writeQueue  []ValueType
	queueSize   int
	lc          client.LocusClient
	esIndexName string
	logger      *zap.Logger
	mu          sync.Mutex
}

func NewDatabaseWriteBufferImpl[ValueType any](
	lc client.LocusClient,
	esIndexName string,
	queueSize int,
	logger *zap.Logger,
) *DatabaseWriteBufferImpl[ValueType] {
	if queueSize <= 0 {
		queueSize = WriteQueueSize
	}
	return &DatabaseWriteBufferImpl[ValueType]{
		writeQueue:  []ValueType{},
		queueSize:   queueSize,
		lc:          lc,
		esIndexName: esIndexName,
		logger:      logger,
	}
}

func (wbc *DatabaseWriteBufferImpl[ValueType]) WriteToBuffer(
	value []ValueType,
) {
	wbc.mu.Lock()
	wbc.writeQueue = append(wbc.writeQueue, value...)
	full := len(wbc.writeQueue) >= wbc.queueSize
	wbc.mu.Unlock()
	if full {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), flushTimeOut)
			defer cancel()
			if err := wbc.Flush(ctx); err != nil {
				wbc.logger.Error("Failed to flush to Elasticsearch", zap.Error(err))
			}
		}()
	}
}

func (wbc *DatabaseWriteBufferImpl[ValueType]) Flush(ctx context.Context) error {
	wbc.mu.Lock()
	defer wbc.mu.Unlock()
	if len(wbc.writeQueue) == 0 {
		return nil
	}
	metaMap, dataMap, err := client.ToMetaAndDataMap(wbc.writeQueue)
	if err != nil {
		return fmt.Errorf("error converting write queue to meta and data map: %w", err)
	}
	err = wbc.lc.BulkIndex(ctx, metaMap, dataMap, wbc.esIndexName)
	wbc.writeQueue = []ValueType{}
	if err != nil {
		return fmt.Errorf("error bulk indexing to Elasticsearch: %w", err)
	}
	return nil
}
