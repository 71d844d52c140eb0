package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const handlerTimeout = 5 * time.Second

// GoChannelBus is an in-process Bus over Watermill's GoChannel transport.
type GoChannelBus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger

	rootCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewGoChannelBus(logger *slog.Logger) *GoChannelBus {
	rootCtx, cancel := context.WithCancel(context.Background())

	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 64,
		},
		watermill.NewSlogLogger(logger),
	)

	return &GoChannelBus{
		pubsub:  pubsub,
		logger:  logger,
		rootCtx: rootCtx,
		cancel:  cancel,
	}
}

func (b *GoChannelBus) Publish(ctx context.Context, evt Event) error {
	if evt.Type == "" {
		return fmt.Errorf("eventbus: event type must not be empty")
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if evt.Payload == nil {
		evt.Payload = make(map[string]string)
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	msg := message.NewMessage(evt.ID, payload)
	msg.Metadata.Set("event_type", evt.Type)
	msg.Metadata.Set("timestamp", evt.Timestamp.Format(time.RFC3339Nano))

	return b.pubsub.Publish(evt.Type, msg)
}

func (b *GoChannelBus) Subscribe(eventType string, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("eventbus: handler must not be nil")
	}

	messages, err := b.pubsub.Subscribe(b.rootCtx, eventType)
	if err != nil {
		return err
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for msg := range messages {
			var evt Event
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				b.logger.Error("eventbus: failed to decode event",
					"event_type", eventType,
					"error", err,
				)
				msg.Ack()
				continue
			}

			b.runHandler(eventType, handler, evt)
			// Side effects are best-effort: the message is acked whether
			// or not the handler succeeded.
			msg.Ack()
		}
	}()

	return nil
}

func (b *GoChannelBus) runHandler(eventType string, handler Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("eventbus: handler panicked",
				"event_type", eventType,
				"panic", r,
			)
		}
	}()

	ctx, cancel := context.WithTimeout(b.rootCtx, handlerTimeout)
	defer cancel()

	handler(ctx, evt)
}

func (b *GoChannelBus) Close() error {
	b.cancel()
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}
