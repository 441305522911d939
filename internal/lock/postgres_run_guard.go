package lock

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// PostgresRunGuard uses session-level advisory locks, so every console sharing the
// database sees the same guard. Each held lock pins its own connection until release.
type PostgresRunGuard struct {
	db    *sql.DB
	mu    sync.Mutex
	conns map[string]*sql.Conn
}

func NewPostgresRunGuard(db *sql.DB) *PostgresRunGuard {
	return &PostgresRunGuard{
		db:    db,
		conns: make(map[string]*sql.Conn),
	}
}

func (g *PostgresRunGuard) TryAcquire(ctx context.Context, name string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.conns[name]; ok {
		return false, nil
	}

	conn, err := g.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", advisoryKey(name)).Scan(&acquired); err != nil {
		_ = conn.Close()
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		_ = conn.Close()
		return false, nil
	}

	g.conns[name] = conn
	return true, nil
}

func (g *PostgresRunGuard) Release(ctx context.Context, name string) error {
	g.mu.Lock()
	conn, ok := g.conns[name]
	delete(g.conns, name)
	g.mu.Unlock()

	if !ok {
		return ErrNotHeld
	}
	defer conn.Close()

	var released bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", advisoryKey(name)).Scan(&released); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if !released {
		return ErrNotHeld
	}
	return nil
}
