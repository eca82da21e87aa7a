package notify

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Bus is the in-process pub/sub carrying ticket events to their consumers.
// Delivery is best effort: events published while nobody is subscribed are dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

func NewBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger),
		logger: logger,
	}
}

func (b *Bus) Publish(topic string, ev TicketEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("pnr_no", ev.PNR)
	if ev.RequestID != "" {
		msg.Metadata.Set("request_id", ev.RequestID)
	}
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) Subscriber() message.Subscriber { return b.pubsub }

func (b *Bus) Close() error { return b.pubsub.Close() }

func decodeEvent(msg *message.Message) (TicketEvent, error) {
	var ev TicketEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("failed to decode event %s: %w", msg.UUID, err)
	}
	return ev, nil
}
