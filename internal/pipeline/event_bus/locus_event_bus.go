package event_bus

import (
	"encoding/json"
	"fmt"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

// LocusEventBus carries JSON-encoded messages between the ingestion surfaces and the pick
// processor. Transactional subscriptions handle one message at a time, in publish order.
type LocusEventBus[InputType any, OutputType any] interface {
	Subscribe(topic string, handler func(input InputType) error, transactional bool) error
	Publish(topic string, arg OutputType) error
	Wait()
}

type LocusEventBusImpl[InputType any, OutputType any] struct {
	eventBus EventBus.Bus
	logger   *zap.Logger
}

func NewLocusEventBus[InputType any, OutputType any](
	eventBus EventBus.Bus,
	logger *zap.Logger,
) LocusEventBus[InputType, OutputType] {
	return &LocusEventBusImpl[InputType, OutputType]{
		eventBus: eventBus,
		logger:   logger,
	}
}

// Subscribe registers an asynchronous handler for topic. A transactional handler runs one message at
// a time and receives messages in publish order, so the pick processor sees its cycles serialized.
// Messages that fail to decode and handler errors are logged and dropped.
func (ev *LocusEventBusImpl[InputType, OutputType]) Subscribe(
	topic string,
	handler func(input InputType) error,
	transactional bool,
) error {
	err := ev.eventBus.SubscribeAsync(
		topic,
		func(arg string) {
			var input InputType
			err := json.Unmarshal([]byte(arg), &input)
			if err != nil {
				ev.logger.Error("Failed to unmarshal input during subscription of topic",
					zap.String("topic", topic),
					zap.Error(err),
				)
				return
			}
			err = handler(input)
			if err != nil {
				ev.logger.Error("Failed to handle input during subscription of topic",
					zap.String("topic", topic),
					zap.Error(err),
				)
			}
		},
		transactional,
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}
	return nil
}

// Publish encodes arg and hands it to every subscriber of topic. When a transactional subscriber is
// still handling the previous message, Publish blocks until that handler returns.
func (ev *LocusEventBusImpl[InputType, OutputType]) Publish(
	topic string,
	arg OutputType,
) error {
	argBytes, err := json.Marshal(arg)
	if err != nil {
		return fmt.Errorf("failed to marshal output during publishing of topic %s: %w", topic, err)
	}
	ev.eventBus.Publish(topic, string(argBytes))
	return nil
}

// Wait blocks until every asynchronous handler has returned.
func (ev *LocusEventBusImpl[InputType, OutputType]) Wait() {
	ev.eventBus.WaitAsync()
}
