package mocks

import (
	"context"
	"sync"
)

// MockMessageBroker is an in-memory message_broaker.MessageBroker. Without PublishFunc
// a published message is queued and handed to the matching Consume channel.
type MockMessageBroker struct {
	PublishFunc func(ctx context.Context, queue string, message []byte) error
	ConsumeFunc func(ctx context.Context, queue string) (<-chan []byte, error)
	CloseFunc   func() error

	mu     sync.Mutex
	queues map[string]chan []byte
}

func (m *MockMessageBroker) queue(name string) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queues == nil {
		m.queues = make(map[string]chan []byte)
	}
	q, ok := m.queues[name]
	if !ok {
		q = make(chan []byte, 64)
		m.queues[name] = q
	}
	return q
}

func (m *MockMessageBroker) Publish(ctx context.Context, queue string, message []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, queue, message)
	}
	select {
	case m.queue(queue) <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockMessageBroker) Consume(ctx context.Context, queue string) (<-chan []byte, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, queue)
	}
	return m.queue(queue), nil
}

// Close closes every queue, which ends the Consume channels.
func (m *MockMessageBroker) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, q := range m.queues {
		close(q)
		delete(m.queues, name)
	}
	return nil
}
