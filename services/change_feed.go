package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/mkingstonsqr/tile-notes/config"
)

const changeChannelPrefix = "tilenotes:changes:"

const (
	EntityNote = "note"
	EntityTask = "task"
)

// ChangeEvent announces a committed write to an owner's collection.
type ChangeEvent struct {
	Origin string `json:"origin"`
	Owner  string `json:"owner"`
	Entity string `json:"entity"`
	Op     string `json:"op"`
	ID     string `json:"id"`
}

// ChangeFeed fans committed writes out to every server instance.
type ChangeFeed interface {
	Publish(ctx context.Context, ev ChangeEvent)
}

type nopFeed struct{}

func (nopFeed) Publish(context.Context, ChangeEvent) {}

// RedisChangeFeed is a ChangeFeed over Redis pub/sub.
type RedisChangeFeed struct {
	client *redis.Client
	origin string
	wg     sync.WaitGroup
}

func NewRedisChangeFeed(client *redis.Client) *RedisChangeFeed {
	return &RedisChangeFeed{
		client: client,
		origin: uuid.New().String(),
	}
}

func (f *RedisChangeFeed) Origin() string {
	return f.origin
}

func (f *RedisChangeFeed) Publish(ctx context.Context, ev ChangeEvent) {
	ev.Origin = f.origin
	payload, err := json.Marshal(ev)
	if err != nil {
		config.Logger.Errorw("encode change event failed", "error", err)
		return
	}
	if err := f.client.Publish(ctx, changeChannelPrefix+ev.Owner, payload).Err(); err != nil {
		// Peers fall back to their next full reload.
		config.Logger.Warnw("publish change event failed",
			"error", err,
			"owner", ev.Owner,
			"entity", ev.Entity,
		)
	}
}

// Listen delivers events published by other instances to handler until ctx is done.
// It returns once the subscription is confirmed.
func (f *RedisChangeFeed) Listen(ctx context.Context, handler func(ChangeEvent)) error {
	pubsub := f.client.PSubscribe(ctx, changeChannelPrefix+"*")
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe to change feed: %w", err)
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					config.Logger.Warnw("discarding malformed change event", "channel", msg.Channel, "error", err)
					continue
				}
				if ev.Origin == f.origin {
					continue
				}
				if ev.Owner == "" {
					ev.Owner = strings.TrimPrefix(msg.Channel, changeChannelPrefix)
				}
				handler(ev)
			}
		}
	}()
	return nil
}

func (f *RedisChangeFeed) Wait() {
	f.wg.Wait()
}

// Invalidator drops an owner's cached collection.
type Invalidator interface {
	Invalidate(owner string)
}

// InvalidateOnChange routes feed events to the matching collection.
func InvalidateOnChange(notes, tasks Invalidator) func(ChangeEvent) {
	return func(ev ChangeEvent) {
		config.Logger.Debugw("remote change, reloading collection",
			"owner", ev.Owner,
			"entity", ev.Entity,
			"op", ev.Op,
		)
		switch ev.Entity {
		case EntityNote:
			notes.Invalidate(ev.Owner)
		case EntityTask:
			tasks.Invalidate(ev.Owner)
		}
	}
}
