package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/plumehq/plume/pkg/channels/kafka"
	"github.com/plumehq/plume/pkg/eventbus"
)

// NewEventBus builds the definition-change event bus. "kafka" connects to the
// brokers; "memory" (the default) keeps events in-process, which is enough
// for a single editor instance.
func NewEventBus(provider, serviceName string, brokers []string, logger *slog.Logger) (eventbus.EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wmLogger, serviceName, brokers)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "", "memory":
		channel := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)

		return eventbus.NewWatermillEventBus(channel, channel), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider %q", provider)
	}
}
