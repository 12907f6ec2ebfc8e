// Package notify delivers the notifications that follow committed writes.
//
// Delivery is best effort. The triggering document is already saved when a
// hook runs, so a failed notification write is logged and dropped; nothing
// is retried and nothing is reported to the caller.
package notify

import (
	"context"
	"time"

	"github.com/dcode-github/cozycorner/logger"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	Recipient primitive.ObjectID
	Type      models.NotificationType
	Message   string
}

// Hook runs after the write that produced e has committed.
type Hook interface {
	AfterCommit(ctx context.Context, e Event)
}

// Publisher hands a stored notification to an out-of-process consumer.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

// Dispatcher stores one Notification per event and then, if a publisher is
// configured, publishes it.
type Dispatcher struct {
	notifications store.NotificationStore
	publisher     Publisher
	now           func() time.Time
}

func NewDispatcher(notifications store.NotificationStore, publisher Publisher) *Dispatcher {
	return &Dispatcher{notifications: notifications, publisher: publisher, now: time.Now}
}

func (d *Dispatcher) AfterCommit(ctx context.Context, e Event) {
	log := logger.FromContext(ctx).With("recipient", e.Recipient.Hex(), "type", e.Type)

	n := models.Notification{
		User:      e.Recipient,
		Message:   e.Message,
		Type:      e.Type,
		CreatedAt: d.now(),
	}
	if err := d.notifications.Insert(ctx, &n); err != nil {
		log.Error("notification write failed", "error", err)
		return
	}

	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(ctx, n); err != nil {
		log.Warn("notification publish failed", "notification_id", n.ID.Hex(), "error", err)
	}
}
