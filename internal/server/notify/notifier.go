// Package notify fans domain events out to the message broker and to e-mail.
// Delivery is best effort: failures are logged and never reach the caller.
package notify

import (
	"context"
	"time"
)

// Kinds of notices. They double as NATS subject suffixes.
const (
	KindEventCreated        = "event.created"
	KindEventUpdated        = "event.updated"
	KindEventDeleted        = "event.deleted"
	KindRegistrationCreated = "registration.created"
	KindRegistrationDeleted = "registration.deleted"
)

// Notice describes something that happened to an event or a registration.
type Notice struct {
	Kind           string    `json:"kind"`
	EventID        string    `json:"eventId"`
	EventTitle     string    `json:"eventTitle,omitempty"`
	OwnerID        string    `json:"ownerId,omitempty"`
	OwnerEmail     string    `json:"-"`
	RegistrationID string    `json:"registrationId,omitempty"`
	UserID         string    `json:"userId,omitempty"`
	UserName       string    `json:"userName,omitempty"`
	At             time.Time `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Multi delivers every notice to each notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) {
	for _, x := range m {
		x.Notify(ctx, n)
	}
}

type Nop struct{}

func (Nop) Notify(context.Context, Notice) {}
