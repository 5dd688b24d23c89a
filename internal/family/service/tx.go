package service

import (
	"context"
	"sync"
)

// StoreTx provides the transactional boundary for one relationship-edit
// operation: every read and write inside fn observes a consistent snapshot and
// either all commit or none do. Implementations may wrap a database
// transaction or, in-memory, a coarse lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// inMemoryStoreTx serializes relationship edits with a single mutex. Coarse,
// but correct: no two operations interleave reads and writes on the same
// family record, which is all the engine requires.
type inMemoryStoreTx struct {
	mu sync.Mutex
}

func newInMemoryStoreTx() *inMemoryStoreTx {
	return &inMemoryStoreTx{}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
