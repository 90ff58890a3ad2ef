package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	mqcontracts "dealroom/contracts/mq"
)

// Notifier is satisfied by *notification.Service.
type Notifier interface {
	AccessStatusChanged(ctx context.Context, p mqcontracts.AccessRequestStatusChangedPayload) error
	AccessRequested(ctx context.Context, p mqcontracts.AccessRequestCreatedPayload) error
}

type AccessRequestHandler struct {
	notifier Notifier
	guard    *Guard
	logger   *zap.Logger
}

func NewAccessRequestHandler(notifier Notifier, guard *Guard, logger *zap.Logger) *AccessRequestHandler {
	return &AccessRequestHandler{notifier: notifier, guard: guard, logger: logger}
}

// HandleStatusChanged consumes access_request.status_changed.
func (h *AccessRequestHandler) HandleStatusChanged(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.AccessRequestStatusChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal status changed payload (non-retryable)", zap.Error(err))
		return nil
	}

	return h.guard.Run(ctx, "access_status_notification", mqcontracts.RoutingKeyAccessRequestStatusChanged, p.EventID, raw,
		func(ctx context.Context) error {
			return h.notifier.AccessStatusChanged(ctx, p)
		})
}

// HandleCreated consumes access_request.created.
func (h *AccessRequestHandler) HandleCreated(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.AccessRequestCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal access request payload (non-retryable)", zap.Error(err))
		return nil
	}

	return h.guard.Run(ctx, "access_requested_notification", mqcontracts.RoutingKeyAccessRequestCreated, p.EventID, raw,
		func(ctx context.Context) error {
			return h.notifier.AccessRequested(ctx, p)
		})
}
