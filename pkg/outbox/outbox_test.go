package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealroom/pkg/trace"
)

type memStore struct {
	events map[int64]*Event
	sent   []int64
	failed []int64
}

func newMemStore(events ...*Event) *memStore {
	s := &memStore{events: map[int64]*Event{}}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *memStore) GetPendingEvents(_ context.Context, limit int) ([]*Event, error) {
	return s.GetEventsByStatus(context.Background(), StatusPending, limit)
}

func (s *memStore) GetEventByID(_ context.Context, id int64) (*Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return e, nil
}

func (s *memStore) GetEventsByStatus(_ context.Context, status string, limit int) ([]*Event, error) {
	var out []*Event
	for id := int64(1); id <= int64(len(s.events)); id++ {
		e := s.events[id]
		if e != nil && (status == "" || e.Status == status) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) MarkAsSent(_ context.Context, id int64) error {
	s.sent = append(s.sent, id)
	s.events[id].Status = StatusSent
	return nil
}

func (s *memStore) MarkAsFailed(_ context.Context, id int64, _ int) error {
	s.failed = append(s.failed, id)
	s.events[id].RetryCount++
	return nil
}

type recordingPublisher struct {
	keys     []string
	traceIDs []string
	failOn   string
}

func (p *recordingPublisher) PublishWithContext(ctx context.Context, routingKey string, _ any) error {
	if routingKey == p.failOn {
		return errors.New("broker down")
	}
	p.keys = append(p.keys, routingKey)
	p.traceIDs = append(p.traceIDs, trace.FromContext(ctx))
	return nil
}

func event(id int64, key string, payload map[string]any) *Event {
	raw, _ := json.Marshal(payload)
	return &Event{ID: id, RoutingKey: key, Payload: raw, Status: StatusPending}
}

func TestDispatcher_PublishesAndMarks(t *testing.T) {
	store := newMemStore(
		event(1, "message.created", map[string]any{"trace_id": "abc"}),
		event(2, "access_request.status_changed", map[string]any{}),
	)
	pub := &recordingPublisher{failOn: "access_request.status_changed"}

	sent := NewDispatcher(store, pub, zap.NewNop()).ProcessPendingEvents(context.Background())

	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"message.created"}, pub.keys)
	assert.Equal(t, []string{"abc"}, pub.traceIDs)
	assert.Equal(t, []int64{1}, store.sent)
	assert.Equal(t, []int64{2}, store.failed)
}

func TestDispatcher_BadPayloadCountsAsFailure(t *testing.T) {
	store := newMemStore(&Event{ID: 1, RoutingKey: "x", Payload: json.RawMessage(`not json`), Status: StatusPending})
	pub := &recordingPublisher{}

	NewDispatcher(store, pub, zap.NewNop()).ProcessPendingEvents(context.Background())

	assert.Empty(t, pub.keys)
	assert.Equal(t, []int64{1}, store.failed)
}

func TestReplayService(t *testing.T) {
	failed := event(1, "message.created", map[string]any{})
	failed.Status = StatusFailed
	store := newMemStore(failed, event(2, "message.created", map[string]any{}))
	pub := &recordingPublisher{}
	svc := NewReplayService(store, pub, zap.NewNop())

	n, err := svc.ReplayFailedEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, StatusSent, store.events[1].Status)

	err = svc.ReplayEvent(context.Background(), 99)
	assert.ErrorIs(t, err, ErrEventNotFound)

	all, err := svc.ListEvents(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
