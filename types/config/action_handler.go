package config

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ActionFunc is a console action that can be triggered by name, e.g. from a cron schedule.
type ActionFunc func(ctx context.Context) error

type ActionHandler struct {
	handlers map[string]ActionFunc
	mutex    sync.Mutex
}

func NewActionHandler() *ActionHandler {
	return &ActionHandler{
		handlers: make(map[string]ActionFunc),
	}
}

// Register adds a new action by name.
func (ah *ActionHandler) Register(name string, handler ActionFunc) error {
	ah.mutex.Lock()
	defer ah.mutex.Unlock()

	if name == "" || handler == nil {
		return fmt.Errorf("action must have a name and a function")
	}
	if _, exists := ah.handlers[name]; exists {
		return fmt.Errorf("action '%s' already registered", name)
	}
	ah.handlers[name] = handler
	return nil
}

func (ah *ActionHandler) Exists(name string) bool {
	ah.mutex.Lock()
	defer ah.mutex.Unlock()

	_, exists := ah.handlers[name]
	return exists
}

func (ah *ActionHandler) Execute(ctx context.Context, name string) error {
	ah.mutex.Lock()
	handler, exists := ah.handlers[name]
	ah.mutex.Unlock()

	if !exists {
		return fmt.Errorf("action '%s' not found", name)
	}
	return handler(ctx)
}

// List returns the registered action names in sorted order.
func (ah *ActionHandler) List() []string {
	ah.mutex.Lock()
	defer ah.mutex.Unlock()

	names := make([]string, 0, len(ah.handlers))
	for name := range ah.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
