package notify

import (
	"context"
	"sync"

	"github.com/RezaEskandarii/lrrctl/types"
)

// Recorder keeps every toast it receives, in order.
type Recorder struct {
	mu     sync.Mutex
	toasts []types.ToastMessage
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(_ context.Context, msg types.ToastMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, msg)
}

func (r *Recorder) Toasts() []types.ToastMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.ToastMessage(nil), r.toasts...)
}

// ByIcon returns the recorded toasts carrying the given icon.
func (r *Recorder) ByIcon(icon types.Icon) []types.ToastMessage {
	var out []types.ToastMessage
	for _, t := range r.Toasts() {
		if t.Icon == icon {
			out = append(out, t)
		}
	}
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.toasts)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = nil
}
