package liststate

import "context"

// Kind classifies a user-visible notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is what a toast would show, plus the record it concerns.
type Notification struct {
	Kind     Kind   `json:"kind"`
	Entity   string `json:"entity"`
	RecordID string `json:"recordId,omitempty"`
	Message  string `json:"message"`
}

// Notifier receives delete outcomes.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, Notification) {}
