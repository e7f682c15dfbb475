package plugin

import (
	"context"
	"time"
)

// Event topics published by the core plugins.
const (
	TopicSurveyCreated = "survey.created"
	TopicSurveyUpdated = "survey.updated"
	TopicSurveyDeleted = "survey.deleted"
	TopicNodeRemoved   = "survey.node.removed"
)

// Event is an in-process notification exchanged between plugins.
type Event struct {
	Topic     string
	Source    string
	Timestamp time.Time
	Payload   any
}

// EventHandler processes one published event.
type EventHandler func(ctx context.Context, e Event)

// EventBus is the pub/sub contract plugins receive. The concrete
// implementation lives in internal/event.
type EventBus interface {
	Publish(ctx context.Context, e Event) error
	PublishAsync(ctx context.Context, e Event)
	Subscribe(topic string, h EventHandler) func()
	SubscribeAll(h EventHandler) func()
}
