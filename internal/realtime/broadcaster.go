// Package realtime delivers message.created events to live viewers of a project
// over WebSocket rooms and Server-Sent Events.
package realtime

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/pkg/logger"
	"dealroom/pkg/metrics"
)

const EventMessageCreated = "message.created"

// Event is a project-scoped realtime notification.
type Event struct {
	Type    string
	Message *model.Message
}

// MessageCreated builds the event emitted after a message is persisted.
func MessageCreated(m *model.Message) Event {
	return Event{Type: EventMessageCreated, Message: m}
}

// Broadcaster delivers an event to everyone watching a project on one transport.
type Broadcaster interface {
	Name() string
	Broadcast(ctx context.Context, projectID string, evt Event) error
}

// Fanout calls each broadcaster in order. A failing transport is logged and
// does not stop delivery on the others.
type Fanout struct {
	targets []Broadcaster
	logger  *zap.Logger
}

func NewFanout(logger *zap.Logger, targets ...Broadcaster) *Fanout {
	return &Fanout{targets: targets, logger: logger}
}

func (f *Fanout) Name() string { return "fanout" }

func (f *Fanout) Broadcast(ctx context.Context, projectID string, evt Event) error {
	for _, t := range f.targets {
		if err := t.Broadcast(ctx, projectID, evt); err != nil {
			metrics.IncrementFanout(t.Name(), "error")
			logger.WithTrace(ctx, f.logger).Warn("Realtime broadcast failed",
				zap.String("transport", t.Name()),
				zap.String("project_id", projectID),
				zap.String("event", evt.Type),
				zap.Error(err),
			)
			continue
		}
		metrics.IncrementFanout(t.Name(), "ok")
	}
	return nil
}

// socketFrame is the WebSocket wire shape: {"event": "...", "data": ...}.
type socketFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type messageEnvelope struct {
	Message *model.Message `json:"message"`
}

// encodeSocketFrame renders evt as sent to room members and over the backbone.
func encodeSocketFrame(evt Event) (json.RawMessage, error) {
	return json.Marshal(socketFrame{Event: evt.Type, Data: messageEnvelope{Message: evt.Message}})
}

// streamFrame is the SSE data shape: {"type": "...", "message": ...}.
type streamFrame struct {
	Type    string         `json:"type"`
	Message *model.Message `json:"message"`
}

func encodeStreamFrame(evt Event) ([]byte, error) {
	return json.Marshal(streamFrame{Type: evt.Type, Message: evt.Message})
}
