// Package notify carries change notifications between the store's writers
// and the in-memory views. One logical channel per table; subscribers may
// filter by parent id. Payloads are compact: subscribers never patch from
// them, they re-read the affected aggregate in full.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	"eventdesk/internal/logger"
	"eventdesk/internal/models"
)

const channelPrefix = "eventdesk.changes."

// ChannelFor returns the pub/sub channel name for a table.
func ChannelFor(table string) string {
	return channelPrefix + table
}

// Notifier publishes change events over Redis pub/sub.
type Notifier struct {
	Client *redis.Client
	Logger *logger.Logger
}

func NewNotifier(client *redis.Client, log *logger.Logger) *Notifier {
	return &Notifier{Client: client, Logger: log}
}

// PublishChange announces a mutation on the table's channel. Publishing is
// fire-and-forget from the writer's point of view: the write has already
// been committed when this runs.
func (n *Notifier) PublishChange(evt models.ChangeEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	if err := n.Client.Publish(context.Background(), ChannelFor(evt.Table), payload).Err(); err != nil {
		if n.Logger != nil {
			n.Logger.Error("NOTIFY", fmt.Sprintf("failed to publish %s change for %s: %v", evt.Table, evt.ID, err))
		}
		return err
	}
	return nil
}

// Subscriber exposes the store's change-notification capability:
// subscribe(table, filter, onChange) -> unsubscribe().
type Subscriber struct {
	Client *redis.Client
	Logger *logger.Logger
}

func NewSubscriber(client *redis.Client, log *logger.Logger) *Subscriber {
	return &Subscriber{Client: client, Logger: log}
}

// Subscribe registers onChange for every change on the table. When filter
// is non-empty only events whose ParentID matches are delivered. Each
// delivery runs on its own goroutine and may overlap with others for the
// same parent; consumers guard against stale results themselves.
//
// The returned function tears the subscription down. In-flight callbacks
// are not cancelled by it.
func (s *Subscriber) Subscribe(table, filter string, onChange func(models.ChangeEvent)) (func(), error) {
	ctx := context.Background()
	pubsub := s.Client.Subscribe(ctx, ChannelFor(table))

	// Force the subscription to be established before returning so a
	// caller's immediate writes are observed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("NOTIFY", fmt.Sprintf("subscribed to %s changes (filter=%q)", table, filter))
	}

	go func() {
		for msg := range pubsub.Channel() {
			var evt models.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				if s.Logger != nil {
					s.Logger.Warn("NOTIFY", fmt.Sprintf("dropping malformed change payload on %s: %v", msg.Channel, err))
				}
				continue
			}

			if filter != "" && evt.ParentID != filter {
				continue
			}

			go onChange(evt)
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil && s.Logger != nil {
				s.Logger.Warn("NOTIFY", fmt.Sprintf("error closing %s subscription: %v", table, err))
			}
		})
	}

	return unsubscribe, nil
}
