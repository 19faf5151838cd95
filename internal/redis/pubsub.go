package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// PlansPubSub broadcasts floor-plan document changes so cached readers can
// refresh.
type PlansPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewPlansPubSub(rdb *redis.Client) *PlansPubSub {
	return &PlansPubSub{
		rdb:     rdb,
		channel: ChannelPlansChanged(),
	}
}

type planChangedMsg struct {
	Type   string `json:"type"`
	PlanID string `json:"plan_id"`
	TsUnix int64  `json:"ts_unix"`
}

func (p *PlansPubSub) PublishPlanChanged(ctx context.Context, planID string) error {
	msg := planChangedMsg{
		Type:   "plan_changed",
		PlanID: planID,
		TsUnix: time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *PlansPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, planID string)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev planChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.PlanID != "" {
				handler(ctx, ev.PlanID)
			}
		}
	}
}

// StatusPubSub broadcasts availability changes per (plan, event) pair, feeding
// the live websocket push.
type StatusPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewStatusPubSub(rdb *redis.Client) *StatusPubSub {
	return &StatusPubSub{
		rdb:     rdb,
		channel: ChannelStatusChanged(),
	}
}

type StatusChangedMsg struct {
	Type    string `json:"type"`
	PlanID  string `json:"plan_id"`
	EventID string `json:"event_id"`
	TsUnix  int64  `json:"ts_unix"`
}

func (p *StatusPubSub) PublishStatusChanged(ctx context.Context, planID, eventID string) error {
	msg := StatusChangedMsg{
		Type:    "status_changed",
		PlanID:  planID,
		EventID: eventID,
		TsUnix:  time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *StatusPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, msg StatusChangedMsg)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev StatusChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.PlanID != "" {
				handler(ctx, ev)
			}
		}
	}
}
