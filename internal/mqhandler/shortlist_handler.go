package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	mqcontracts "dealroom/contracts/mq"
)

// InviteNotifier is satisfied by *notification.Service.
type InviteNotifier interface {
	ExpertInvited(ctx context.Context, p mqcontracts.ShortlistInvitedPayload) error
}

type ShortlistHandler struct {
	notifier InviteNotifier
	guard    *Guard
	logger   *zap.Logger
}

func NewShortlistHandler(notifier InviteNotifier, guard *Guard, logger *zap.Logger) *ShortlistHandler {
	return &ShortlistHandler{notifier: notifier, guard: guard, logger: logger}
}

// HandleInvited consumes shortlist.invited.
func (h *ShortlistHandler) HandleInvited(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.ShortlistInvitedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal shortlist payload (non-retryable)", zap.Error(err))
		return nil
	}

	return h.guard.Run(ctx, "expert_invited_notification", mqcontracts.RoutingKeyShortlistInvited, p.EventID, raw,
		func(ctx context.Context) error {
			return h.notifier.ExpertInvited(ctx, p)
		})
}
