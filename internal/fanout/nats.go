// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

//go:build nats

package fanout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/mediagateway/gateway/internal/logging"
)

// NATSConfig configures the cross-instance Watermill/NATS JetStream transport.
type NATSConfig struct {
	URL             string
	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int
}

// DefaultNATSConfig returns sensible defaults for connecting to a local
// JetStream-enabled NATS server.
func DefaultNATSConfig(url string) NATSConfig {
	return NATSConfig{
		URL:             url,
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 8 * 1024 * 1024,
	}
}

// NATSTransport implements CrossInstance over Watermill/NATS JetStream,
// giving per-publisher-FIFO, at-least-once delivery across gateway replicas
// (spec §4.9, §5).
type NATSTransport struct {
	publisher   message.Publisher
	subscriber  message.Subscriber
	logger      watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// NewNATSTransport dials NATS and configures a JetStream publisher and
// subscriber pair for the fan-out subjects.
func NewNATSTransport(cfg NATSConfig) (*NATSTransport, error) {
	logger := watermill.NewStdLogger(false, false)

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	wmPubConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true,
		},
	}
	pub, err := wmNats.NewPublisher(wmPubConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("fanout: create nats publisher: %w", err)
	}

	wmSubConfig := wmNats.SubscriberConfig{
		URL:            cfg.URL,
		NatsOptions:    natsOpts,
		Unmarshaler:    &wmNats.NATSMarshaler{},
		SubscribeAllOptions: []natsgo.SubOpt{natsgo.DeliverNew()},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			DurablePrefix: "fanout",
		},
	}
	sub, err := wmNats.NewSubscriber(wmSubConfig, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("fanout: create nats subscriber: %w", err)
	}

	return &NATSTransport{publisher: pub, subscriber: sub, logger: logger}, nil
}

// PublishSync publishes a sync Op to the user.{userID}.sync subject.
func (t *NATSTransport) PublishSync(ctx context.Context, userID string, payload []byte) error {
	return t.publish(syncChannel(userID), payload)
}

// PublishCommand publishes a Command to the user.{userID}.devices.{deviceID} subject.
func (t *NATSTransport) PublishCommand(ctx context.Context, userID, deviceID string, payload []byte) error {
	return t.publish(deviceChannel(userID, deviceID), payload)
}

func (t *NATSTransport) publish(subject string, payload []byte) error {
	t.mu.RLock()
	if t.closed {
		t.mu.RUnlock()
		return fmt.Errorf("fanout: transport is closed")
	}
	t.mu.RUnlock()

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	return t.publisher.Publish(subject, msg)
}

// Subscribe returns a channel of raw payloads delivered on subject,
// bridging Watermill messages (which must be Ack'd) to a plain byte stream.
func (t *NATSTransport) Subscribe(ctx context.Context, subject string) (<-chan []byte, error) {
	messages, err := t.subscriber.Subscribe(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("fanout: subscribe %s: %w", subject, err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
					msg.Ack()
				case <-ctx.Done():
					msg.Nack()
					return
				}
			}
		}
	}()
	return out, nil
}

// Close releases the underlying NATS connections.
func (t *NATSTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	var firstErr error
	if err := t.publisher.Close(); err != nil {
		firstErr = err
	}
	if err := t.subscriber.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

var _ CrossInstance = (*NATSTransport)(nil)

func init() {
	logging.Debug().Msg("fanout: built with NATS JetStream cross-instance transport")
}
