package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "project:"

// ProjectChannel is the backbone topic for a project.
func ProjectChannel(projectID string) string {
	return channelPrefix + projectID
}

// RedisBroadcaster publishes socket frames on project:<id> so every API
// instance can forward them to its own rooms.
type RedisBroadcaster struct {
	rdb *redis.Client
}

func NewRedisBroadcaster(rdb *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{rdb: rdb}
}

func (b *RedisBroadcaster) Name() string { return "redis" }

func (b *RedisBroadcaster) Broadcast(ctx context.Context, projectID string, evt Event) error {
	frame, err := encodeSocketFrame(evt)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, ProjectChannel(projectID), []byte(frame)).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

const (
	defaultRelayMinBackoff = 500 * time.Millisecond
	defaultRelayMaxBackoff = 30 * time.Second
)

// Relay subscribes to every project channel and hands frames to the local hub.
// A failed or dropped subscription is retried until ctx ends.
type Relay struct {
	rdb        *redis.Client
	hub        *Hub
	logger     *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewRelay(rdb *redis.Client, hub *Hub, logger *zap.Logger) *Relay {
	return &Relay{
		rdb:        rdb,
		hub:        hub,
		logger:     logger,
		minBackoff: defaultRelayMinBackoff,
		maxBackoff: defaultRelayMaxBackoff,
	}
}

// WithBackoff sets the resubscribe delay bounds. The delay doubles per failed attempt.
func (r *Relay) WithBackoff(minDelay, maxDelay time.Duration) *Relay {
	if minDelay > 0 {
		r.minBackoff = minDelay
	}
	if maxDelay >= r.minBackoff {
		r.maxBackoff = maxDelay
	}
	return r
}

// Run blocks until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	delay := r.minBackoff
	for {
		subscribed, err := r.runOnce(ctx)
		if ctx.Err() != nil {
			r.logger.Info("Realtime relay stopped")
			return
		}
		if subscribed {
			delay = r.minBackoff
		}
		r.logger.Warn("Realtime relay lost its subscription, retrying",
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			r.logger.Info("Realtime relay stopped")
			return
		case <-time.After(delay):
		}
		if delay *= 2; delay > r.maxBackoff {
			delay = r.maxBackoff
		}
	}
}

// runOnce holds one PSUBSCRIBE until it fails or ctx ends.
func (r *Relay) runOnce(ctx context.Context) (subscribed bool, err error) {
	ps := r.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return false, fmt.Errorf("psubscribe: %w", err)
	}
	r.logger.Info("Realtime relay subscribed", zap.String("pattern", channelPrefix+"*"))

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, errors.New("subscription channel closed")
			}
			projectID := strings.TrimPrefix(msg.Channel, channelPrefix)
			n := r.hub.Deliver(projectID, []byte(msg.Payload))
			r.logger.Debug("Relayed frame", zap.String("project_id", projectID), zap.Int("clients", n))
		}
	}
}
