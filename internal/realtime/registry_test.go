package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealroom/internal/model"
)

func testMessage(projectID, body string) *model.Message {
	return &model.Message{ID: "m-" + body, ProjectID: projectID, SenderID: "u1", Body: body, Attachments: []string{}, CreatedAt: time.Now()}
}

func receive(t *testing.T, sub *Subscriber) streamFrame {
	t.Helper()
	select {
	case raw := <-sub.C():
		var f streamFrame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame received")
	}
	return streamFrame{}
}

func assertNothing(t *testing.T, sub *Subscriber) {
	t.Helper()
	select {
	case raw := <-sub.C():
		t.Fatalf("unexpected frame %s", raw)
	default:
	}
}

func TestRegistry_FanoutToProjectSubscribersOnly(t *testing.T) {
	reg := NewRegistry(8, zap.NewNop())
	p1 := reg.Subscribe("P")
	p2 := reg.Subscribe("P")
	q := reg.Subscribe("Q")

	require.NoError(t, reg.Broadcast(context.Background(), "P", MessageCreated(testMessage("P", "hello"))))

	for _, sub := range []*Subscriber{p1, p2} {
		f := receive(t, sub)
		assert.Equal(t, EventMessageCreated, f.Type)
		assert.Equal(t, "hello", f.Message.Body)
		assertNothing(t, sub)
	}
	assertNothing(t, q)
}

func TestRegistry_LastUnsubscribeRemovesKey(t *testing.T) {
	reg := NewRegistry(8, zap.NewNop())
	a := reg.Subscribe("P")
	b := reg.Subscribe("P")
	require.True(t, reg.Has("P"))

	reg.Unsubscribe(a)
	assert.True(t, reg.Has("P"))
	assert.Equal(t, 1, reg.Count("P"))

	reg.Unsubscribe(b)
	assert.False(t, reg.Has("P"))

	reg.mu.RLock()
	_, present := reg.subs["P"]
	reg.mu.RUnlock()
	assert.False(t, present)

	// closed channel signals the stream to end; double unsubscribe is harmless
	_, open := <-b.C()
	assert.False(t, open)
	reg.Unsubscribe(b)
}

func TestRegistry_FullQueueDropsWithoutBlocking(t *testing.T) {
	reg := NewRegistry(1, zap.NewNop())
	slow := reg.Subscribe("P")
	fast := reg.Subscribe("P")

	ctx := context.Background()
	require.NoError(t, reg.Broadcast(ctx, "P", MessageCreated(testMessage("P", "1"))))
	receive(t, fast)
	require.NoError(t, reg.Broadcast(ctx, "P", MessageCreated(testMessage("P", "2"))))

	assert.Equal(t, "2", receive(t, fast).Message.Body)
	assert.Equal(t, "1", receive(t, slow).Message.Body)
	assertNothing(t, slow)
}

func TestRegistry_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	reg := NewRegistry(4, zap.NewNop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			project := fmt.Sprintf("P%d", i%5)
			sub := reg.Subscribe(project)
			_ = reg.Broadcast(context.Background(), project, MessageCreated(testMessage(project, "x")))
			reg.Unsubscribe(sub)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		assert.False(t, reg.Has(fmt.Sprintf("P%d", i)))
	}
}

func TestRegistry_CloseEndsAllStreams(t *testing.T) {
	reg := NewRegistry(4, zap.NewNop())
	a := reg.Subscribe("P")
	b := reg.Subscribe("Q")

	reg.Close()

	_, openA := <-a.C()
	_, openB := <-b.C()
	assert.False(t, openA)
	assert.False(t, openB)
	assert.False(t, reg.Has("P"))
	reg.Unsubscribe(a)
}
