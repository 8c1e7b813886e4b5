// Package gochannel provides the in-process watermill transport for lifecycle events.
package gochannel

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// DefaultBuffer is the output channel size used by the API server.
const DefaultBuffer = 1000

// CreateChannel returns one GoChannel acting as both publisher and subscriber.
// With blocking set, Publish waits until every subscriber acknowledged the message.
func CreateChannel(logger watermill.LoggerAdapter, buffer int64, blocking bool) (*gochannel.GoChannel, *gochannel.GoChannel) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            buffer,
			BlockPublishUntilSubscriberAck: blocking,
		},
		logger,
	)

	return pubSub, pubSub
}
