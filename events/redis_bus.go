package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/franchise-menu-sync/utils"
)

// RedisBus publishes events on a Redis channel and, once started, delivers
// every received event to the local subscribers.
type RedisBus struct {
	client   *redis.Client
	channel  string
	hub      *Hub
	pubsub   *redis.PubSub
	StopChan chan struct{}
	done     chan struct{}
}

func NewRedisBus(client *redis.Client, channel string) *RedisBus {
	return &RedisBus{
		client:   client,
		channel:  channel,
		hub:      NewHub(),
		StopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (b *RedisBus) Subscribe(handler Handler) {
	b.hub.Subscribe(handler)
}

func (b *RedisBus) Publish(ctx context.Context, evt VersionCreated) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", b.channel, err)
	}
	return nil
}

// Start subscribes to the channel and returns once the subscription is
// confirmed. Messages are handled one at a time on a single goroutine.
func (b *RedisBus) Start(ctx context.Context) error {
	b.pubsub = b.client.Subscribe(ctx, b.channel)
	if _, err := b.pubsub.Receive(ctx); err != nil {
		_ = b.pubsub.Close()
		b.pubsub = nil
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	messages := b.pubsub.Channel()
	go func() {
		defer close(b.done)
		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					return
				}
				b.handle(msg)
			case <-b.StopChan:
				return
			}
		}
	}()

	utils.InfoLogger.Printf("Redis event bus listening on %s", b.channel)
	return nil
}

func (b *RedisBus) handle(msg *redis.Message) {
	var evt VersionCreated
	if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
		utils.LogError("events", "RedisBus.handle", "Error decoding event", msg.Payload, err)
		return
	}
	if err := b.hub.Publish(context.Background(), evt); err != nil {
		utils.LogError("events", "RedisBus.handle", "Error handling event", evt, err)
	}
}

func (b *RedisBus) Stop() {
	close(b.StopChan)
	if b.pubsub != nil {
		_ = b.pubsub.Close()
		<-b.done
	}
}
