package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/swimlane/pkg/channels/gochannel"
	"github.com/dukex/swimlane/pkg/channels/kafka"
	"github.com/dukex/swimlane/pkg/eventbus"
)

// NewEventBus creates the event bus for a provider: "gochannel" keeps events in
// process, "kafka" connects to the comma separated brokers, "none" discards them.
func NewEventBus(provider, brokers string, logger *slog.Logger) (eventbus.EventBus, error) {
	switch provider {
	case "", "none":
		return eventbus.Noop{}, nil
	case "gochannel":
		pub, sub := gochannel.CreateChannel(watermill.NewSlogLogger(logger), gochannel.DefaultBuffer, false)

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), kafka.ParseBrokers(brokers), "swimlane")
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
