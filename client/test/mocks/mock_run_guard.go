package mocks

import "context"

// MockRunGuard is a mock implementation of lock.RunGuard for testing.
type MockRunGuard struct {
	TryAcquireFunc func(ctx context.Context, name string) (bool, error)
	ReleaseFunc    func(ctx context.Context, name string) error
}

func (m *MockRunGuard) TryAcquire(ctx context.Context, name string) (bool, error) {
	if m.TryAcquireFunc != nil {
		return m.TryAcquireFunc(ctx, name)
	}
	return true, nil
}

func (m *MockRunGuard) Release(ctx context.Context, name string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, name)
	}
	return nil
}
