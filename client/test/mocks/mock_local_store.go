package mocks

import "context"

// MockLocalStore is a mock implementation of store.LocalStore for testing.
type MockLocalStore struct {
	GetFunc    func(ctx context.Context, key string) (string, bool, error)
	SetFunc    func(ctx context.Context, key, value string) error
	DeleteFunc func(ctx context.Context, keys ...string) error
	KeysFunc   func(ctx context.Context) ([]string, error)
	CloseFunc  func() error
}

func (m *MockLocalStore) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", false, nil
}

func (m *MockLocalStore) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return nil
}

func (m *MockLocalStore) Delete(ctx context.Context, keys ...string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, keys...)
	}
	return nil
}

func (m *MockLocalStore) Keys(ctx context.Context) ([]string, error) {
	if m.KeysFunc != nil {
		return m.KeysFunc(ctx)
	}
	return nil, nil
}

func (m *MockLocalStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
