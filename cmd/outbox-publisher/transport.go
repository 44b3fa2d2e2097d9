package main

import (
	"context"
	"errors"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/outbox/registry"
)

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

// publisherCache hands out one Pub/Sub publisher per topic for the life of
// the process. Stop flushes and releases them.
type publisherCache struct {
	client pubSubClient
	mu     sync.Mutex
	byName map[string]*gcppubsub.Publisher
}

func newPublisherCache(client pubSubClient) *publisherCache {
	return &publisherCache{client: client, byName: map[string]*gcppubsub.Publisher{}}
}

func (c *publisherCache) factory() publisherFactory {
	return func(topic string) publisher {
		c.mu.Lock()
		defer c.mu.Unlock()
		p, ok := c.byName[topic]
		if !ok {
			p = c.client.Publisher(topic)
			if p == nil {
				return nil
			}
			c.byName[topic] = p
		}
		return &gcpPublisher{Publisher: p}
	}
}

func (c *publisherCache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, p := range c.byName {
		p.Stop()
		delete(c.byName, name)
	}
}

// buildMessage carries the raw envelope as data and the routing metadata as
// attributes so subscribers can filter without decoding.
func buildMessage(event models.OutboxEvent, resolved *registry.ResolvedEvent) *gcppubsub.Message {
	attrs := map[string]string{
		"event_id":       resolved.Envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if actor := resolved.Envelope.Actor; actor != nil && actor.UserID != uuid.Nil {
		attrs["actor_user_id"] = actor.UserID.String()
		if actor.Role != "" {
			attrs["actor_role"] = actor.Role
		}
	}
	return &gcppubsub.Message{
		Data:        event.Payload,
		Attributes:  attrs,
		OrderingKey: orderingKey(event),
	}
}

// orderingKey groups events by aggregate so an order's events are delivered
// in the sequence they were written.
func orderingKey(event models.OutboxEvent) string {
	return string(event.AggregateType) + ":" + event.AggregateID.String()
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	if !p.EnableMessageOrdering {
		msg.OrderingKey = ""
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg), resume: p.Publisher, key: msg.OrderingKey}
}

// gcpPublishResult resumes the ordering key after a failure; Pub/Sub pauses
// a key on error and rejects later messages for it until resumed.
type gcpPublishResult struct {
	*gcppubsub.PublishResult
	resume interface{ ResumePublish(key string) }
	key    string
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	id, err := r.PublishResult.Get(ctx)
	if err != nil && r.key != "" && r.resume != nil {
		r.resume.ResumePublish(r.key)
	}
	return id, err
}
