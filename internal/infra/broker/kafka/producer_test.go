package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sync := mocks.NewSyncProducer(t, cfg)
	sync.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "dev.booking.events.v1" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "kayak-tour" {
			return errors.New("unexpected key " + string(key))
		}
		if len(msg.Headers) != 2 || string(msg.Headers[0].Key) != "ce_type" {
			return errors.New("headers not sorted")
		}
		return nil
	})

	p := NewProducerWith(sync)
	err := p.Publish(context.Background(), "dev.booking.events.v1", "kayak-tour", []byte(`{}`), map[string]string{
		"content-type": "application/cloudevents+json",
		"ce_type":      "booking.confirmed.v1",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublish_WrapsBrokerError(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sync := mocks.NewSyncProducer(t, cfg)
	sync.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	p := NewProducerWith(sync)
	err := p.Publish(context.Background(), "booking.events.v1", "k", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	assert.Contains(t, err.Error(), "booking.events.v1")
	require.NoError(t, p.Close())
}

func TestPublish_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Producer{}
	assert.ErrorIs(t, p.Publish(ctx, "t", "k", nil, nil), context.Canceled)
	assert.NoError(t, p.Close())
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil, nil)
	assert.Error(t, err)
}
