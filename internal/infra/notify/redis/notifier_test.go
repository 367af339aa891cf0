package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	channel string
	message []byte
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message any) *goredis.IntCmd {
	f.channel = channel
	f.message, _ = message.([]byte)
	return goredis.NewIntResult(1, f.err)
}

func TestNotify(t *testing.T) {
	pub := &fakePublisher{}
	n := &Notifier{client: pub}

	err := n.Notify(context.Background(), "private-user-owner-1", "booking-confirmed", map[string]string{"bookingId": "bk-1"})
	require.NoError(t, err)
	assert.Equal(t, "private-user-owner-1", pub.channel)

	var msg Message
	require.NoError(t, json.Unmarshal(pub.message, &msg))
	assert.Equal(t, "booking-confirmed", msg.Event)
	assert.JSONEq(t, `{"bookingId":"bk-1"}`, string(msg.Data))
}

func TestNotify_PublishError(t *testing.T) {
	n := &Notifier{client: &fakePublisher{err: errors.New("connection refused")}}

	err := n.Notify(context.Background(), "private-user-x", "booking-confirmed", struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private-user-x")
}

func TestNotify_UnencodablePayload(t *testing.T) {
	n := &Notifier{client: &fakePublisher{}}
	assert.Error(t, n.Notify(context.Background(), "c", "e", make(chan int)))
}
