package service

import (
	"context"
	"fmt"

	"github.com/Avi18971911/Locus/internal/pipeline/event_bus"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	processorService "github.com/Avi18971911/Locus/internal/pipeline/processor/service"
	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

// DataPipeline feeds picks published on the pick topic into the processor, one cycle at a time.
type DataPipeline struct {
	processor *processorService.PickProcessor
	pickBus   event_bus.LocusEventBus[pickModel.Pick, pickModel.Pick]
	pickTopic string
	logger    *zap.Logger
}

func NewDataPipeline(
	processor *processorService.PickProcessor,
	eventBus EventBus.Bus,
	pickTopic string,
	logger *zap.Logger,
) *DataPipeline {
	return &DataPipeline{
		processor: processor,
		pickBus:   event_bus.NewLocusEventBus[pickModel.Pick, pickModel.Pick](eventBus, logger),
		pickTopic: pickTopic,
		logger:    logger,
	}
}

func (dp *DataPipeline) Start() error {
	err := dp.pickBus.Subscribe(
		dp.pickTopic,
		func(input pickModel.Pick) error {
			ctx := context.Background()
			origins, err := dp.processor.HandlePick(ctx, input)
			if err != nil {
				return fmt.Errorf("failed to process pick: %w", err)
			}
			if len(origins) > 0 {
				dp.logger.Info("Released origins", zap.String("pick_id", input.Id), zap.Int("origin_count", len(origins)))
			}
			return nil
		},
		true,
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to input topic for PickProcessor: %w", err)
	}
	return nil
}

// Submit publishes a pick on the pick topic.
func (dp *DataPipeline) Submit(pick pickModel.Pick) error {
	if err := dp.pickBus.Publish(dp.pickTopic, pick); err != nil {
		return fmt.Errorf("failed to publish pick %s: %w", pick.Id, err)
	}
	return nil
}

// Wait blocks until every submitted pick has been processed.
func (dp *DataPipeline) Wait() {
	dp.pickBus.Wait()
}
