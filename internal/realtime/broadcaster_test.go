package realtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubBroadcaster struct {
	name  string
	err   error
	calls []string
}

func (s *stubBroadcaster) Name() string { return s.name }

func (s *stubBroadcaster) Broadcast(_ context.Context, projectID string, _ Event) error {
	s.calls = append(s.calls, projectID)
	return s.err
}

func TestFanout_FailureIsIsolated(t *testing.T) {
	first := &stubBroadcaster{name: "redis", err: errors.New("connection refused")}
	second := &stubBroadcaster{name: "sse"}

	err := NewFanout(zap.NewNop(), first, second).Broadcast(context.Background(), "P", MessageCreated(testMessage("P", "hi")))

	assert.NoError(t, err)
	assert.Equal(t, []string{"P"}, first.calls)
	assert.Equal(t, []string{"P"}, second.calls)
}

func TestEncodeFrames(t *testing.T) {
	evt := MessageCreated(testMessage("P", "hi"))

	socket, err := encodeSocketFrame(evt)
	assert.NoError(t, err)
	assert.Contains(t, string(socket), `"event":"message.created"`)
	assert.Contains(t, string(socket), `"data":{"message":{`)

	stream, err := encodeStreamFrame(evt)
	assert.NoError(t, err)
	assert.Contains(t, string(stream), `"type":"message.created"`)
	assert.Contains(t, string(stream), `"message":{`)
}
