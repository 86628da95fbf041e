// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// Config configures the in-process bus.
type Config struct {
	// OutputChannelBuffer is the per-subscriber buffer size.
	OutputChannelBuffer int64 `koanf:"buffer"`
}

// Bus is an in-process Watermill pub/sub for session events.
type Bus struct {
	pubsub *gochannel.GoChannel

	mu     sync.Mutex
	closed bool
}

// NewBus creates a Bus.
func NewBus(cfg Config) *Bus {
	if cfg.OutputChannelBuffer <= 0 {
		cfg.OutputChannelBuffer = 64
	}
	logger := watermill.NewSlogLogger(logging.NewSlogLogger())
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputChannelBuffer,
		}, logger),
	}
}

// PublishRanked publishes ev to TopicRanked. Events published with no
// subscriber are dropped.
func (b *Bus) PublishRanked(ctx context.Context, ev *RankedEvent) (err error) {
	defer func() { metrics.RecordEvent(true, TopicRanked, err) }()

	if err := ev.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	data, err := ev.marshal()
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(ev.EventID, data)
	msg.SetContext(ctx)
	msg.Metadata.Set("status", ev.Status)
	if ev.RequestID != "" {
		msg.Metadata.Set("request_id", ev.RequestID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("event bus is closed")
	}
	return b.pubsub.Publish(TopicRanked, msg)
}

// Subscribe returns the message stream for topic. The channel is closed
// when ctx is done or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close shuts the bus down. It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}
