package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"dealroom/pkg/metrics"
)

// Subscriber is one open SSE connection.
type Subscriber struct {
	projectID string
	ch        chan []byte
	once      sync.Once
}

// C yields serialized stream frames; it is closed on Unsubscribe.
func (s *Subscriber) C() <-chan []byte { return s.ch }

func (s *Subscriber) ProjectID() string { return s.projectID }

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Registry maps project ids to their SSE subscribers. A project key exists
// only while it has at least one subscriber.
type Registry struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscriber]struct{}
	buffer int
	logger *zap.Logger
}

func NewRegistry(buffer int, logger *zap.Logger) *Registry {
	if buffer <= 0 {
		buffer = 64
	}
	return &Registry{
		subs:   make(map[string]map[*Subscriber]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

func (r *Registry) Name() string { return "sse" }

func (r *Registry) Subscribe(projectID string) *Subscriber {
	sub := &Subscriber{projectID: projectID, ch: make(chan []byte, r.buffer)}

	r.mu.Lock()
	set, ok := r.subs[projectID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		r.subs[projectID] = set
	}
	set[sub] = struct{}{}
	r.mu.Unlock()

	metrics.ConnectionOpened("sse")
	return sub
}

// Unsubscribe removes sub and deletes the project key when it was the last one.
// Calling it twice is harmless.
func (r *Registry) Unsubscribe(sub *Subscriber) {
	r.mu.Lock()
	set, ok := r.subs[sub.projectID]
	_, member := set[sub]
	if ok && member {
		delete(set, sub)
		if len(set) == 0 {
			delete(r.subs, sub.projectID)
		}
	}
	r.mu.Unlock()

	if member {
		sub.close()
		metrics.ConnectionClosed("sse")
	}
}

// Broadcast queues the frame on every local subscriber of projectID. A full
// subscriber queue drops the frame for that subscriber only.
func (r *Registry) Broadcast(_ context.Context, projectID string, evt Event) error {
	frame, err := encodeStreamFrame(evt)
	if err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for sub := range r.subs[projectID] {
		select {
		case sub.ch <- frame:
		default:
			r.logger.Debug("SSE subscriber queue full, dropping frame", zap.String("project_id", projectID))
		}
	}
	return nil
}

// Has reports whether projectID currently has an entry.
func (r *Registry) Has(projectID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.subs[projectID]
	return ok
}

func (r *Registry) Count(projectID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[projectID])
}

// Close ends every stream; used on shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]map[*Subscriber]struct{})
	r.mu.Unlock()

	for _, set := range subs {
		for sub := range set {
			sub.close()
			metrics.ConnectionClosed("sse")
		}
	}
}
