package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RezaEskandarii/lrrctl/types"
)

// DefaultDismissDelay is how long an auto-dismissed toast stays on the board.
const DefaultDismissDelay = 3 * time.Second

// Board keeps the toasts currently on screen. Toasts stack independently; an
// auto-dismiss toast removes itself after the dismiss delay, the others stay until
// Dismiss is called.
type Board struct {
	mu     sync.Mutex
	toasts map[string]types.ToastMessage
	timers map[string]*time.Timer
	delay  time.Duration
}

func NewBoard(dismissDelay time.Duration) *Board {
	if dismissDelay <= 0 {
		dismissDelay = DefaultDismissDelay
	}
	return &Board{
		toasts: make(map[string]types.ToastMessage),
		timers: make(map[string]*time.Timer),
		delay:  dismissDelay,
	}
}

func (b *Board) Notify(_ context.Context, msg types.ToastMessage) {
	msg = Stamp(msg)

	b.mu.Lock()
	defer b.mu.Unlock()

	// a relayed copy of a toast already shown
	if _, ok := b.toasts[msg.ID]; ok {
		return
	}
	b.toasts[msg.ID] = msg
	if msg.AutoDismiss {
		id := msg.ID
		b.timers[id] = time.AfterFunc(b.delay, func() { b.Dismiss(id) })
	}
}

// Dismiss removes a toast. It reports whether the toast was still on the board.
func (b *Board) Dismiss(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.timers[id]; ok {
		t.Stop()
		delete(b.timers, id)
	}
	if _, ok := b.toasts[id]; !ok {
		return false
	}
	delete(b.toasts, id)
	return true
}

// Active returns the toasts on the board, newest first.
func (b *Board) Active() []types.ToastMessage {
	b.mu.Lock()
	out := make([]types.ToastMessage, 0, len(b.toasts))
	for _, t := range b.toasts {
		out = append(out, t)
	}
	b.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.toasts)
}
