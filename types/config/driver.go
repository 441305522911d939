package config

import (
	"fmt"
	"strings"
)

// StorageDriver selects the backend of the local key/value store and of the run guard.
type StorageDriver int

const (
	Memory StorageDriver = iota + 1
	Postgres
	Redis
)

type MessageQueueDriver int

const (
	RabbitMQ MessageQueueDriver = iota + 1
)

func (d MessageQueueDriver) String() string {
	switch d {
	case RabbitMQ:
		return "rabbitmq"
	default:
		return "unknown"
	}
}

// String converts the StorageDriver enum to a human-readable string.
func (d StorageDriver) String() string {
	switch d {
	case Memory:
		return "memory"
	case Postgres:
		return "postgres"
	case Redis:
		return "redis"
	}
	return "unknown"
}

func ParseStorageDriver(name string) (StorageDriver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "memory":
		return Memory, nil
	case "postgres", "postgresql":
		return Postgres, nil
	case "redis":
		return Redis, nil
	}
	return 0, fmt.Errorf("unknown storage driver %q", name)
}
