// Package notify renders toasts: to the log, to the in-memory dashboard board, or
// to external sinks (RabbitMQ, Redis pub/sub). Notify never reports failure to the
// caller; sinks log and absorb their own errors.
package notify

import (
	"context"
	"time"

	"github.com/RezaEskandarii/lrrctl/types"
	"github.com/google/uuid"
)

type Notifier interface {
	Notify(ctx context.Context, msg types.ToastMessage)
}

// Func adapts a plain function to a Notifier.
type Func func(ctx context.Context, msg types.ToastMessage)

func (f Func) Notify(ctx context.Context, msg types.ToastMessage) {
	f(ctx, msg)
}

// Nop drops every toast.
var Nop Notifier = Func(func(context.Context, types.ToastMessage) {})

// Stamp fills in the id and creation time of a toast when they are missing.
func Stamp(msg types.ToastMessage) types.ToastMessage {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	return msg
}

type multi []Notifier

// Multi fans a toast out to every non-nil notifier, in order. The toast is stamped
// once so all sinks see the same id.
func Multi(notifiers ...Notifier) Notifier {
	var m multi
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

func (m multi) Notify(ctx context.Context, msg types.ToastMessage) {
	msg = Stamp(msg)
	for _, n := range m {
		n.Notify(ctx, msg)
	}
}
