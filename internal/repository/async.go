package repository

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Future resolves once an offloaded storage call finishes.
type Future[V any] struct {
	done chan struct{}
	val  V
	err  error
}

func newFuture[V any]() *Future[V] {
	return &Future[V]{done: make(chan struct{})}
}

func (f *Future[V]) resolve(val V, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// Await suspends the caller until the result is ready or ctx is done. The
// underlying storage call keeps running on its worker either way; Await only
// abandons waiting for it.
func (f *Future[V]) Await(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero V
		return zero, errors.Wrap(ctx.Err(), errors.CategoryOperation, "await cancelled")
	}
}

// Ack is the result of operations that only report completion.
type Ack struct{}

// Async derives the non-blocking variant of a Repository by offloading every
// call to a shared worker pool. Two calls issued back to back may complete in
// either order; callers needing sequencing must await in between.
type Async[T any] struct {
	repo Repository[T]
	pool *Pool
}

func NewAsync[T any](repo Repository[T], pool *Pool) *Async[T] {
	return &Async[T]{repo: repo, pool: pool}
}

// Sync exposes the wrapped blocking repository.
func (a *Async[T]) Sync() Repository[T] {
	return a.repo
}

func (a *Async[T]) Find(ctx context.Context, filter Filter) *Future[T] {
	f := newFuture[T]()
	a.pool.Submit(func() {
		f.resolve(a.repo.Find(ctx, filter))
	})
	return f
}

func (a *Async[T]) Exists(ctx context.Context, filter Filter) *Future[bool] {
	f := newFuture[bool]()
	a.pool.Submit(func() {
		f.resolve(a.repo.Exists(ctx, filter))
	})
	return f
}

func (a *Async[T]) FindAll(ctx context.Context) *Future[[]T] {
	f := newFuture[[]T]()
	a.pool.Submit(func() {
		f.resolve(a.repo.FindAll(ctx))
	})
	return f
}

func (a *Async[T]) ListIDs(ctx context.Context) *Future[[]uuid.UUID] {
	f := newFuture[[]uuid.UUID]()
	a.pool.Submit(func() {
		f.resolve(a.repo.ListIDs(ctx))
	})
	return f
}

func (a *Async[T]) Save(ctx context.Context, record T) *Future[Ack] {
	f := newFuture[Ack]()
	a.pool.Submit(func() {
		f.resolve(Ack{}, a.repo.Save(ctx, record))
	})
	return f
}

func (a *Async[T]) Delete(ctx context.Context, filter Filter) *Future[bool] {
	f := newFuture[bool]()
	a.pool.Submit(func() {
		f.resolve(a.repo.Delete(ctx, filter))
	})
	return f
}

func (a *Async[T]) DeleteAndRetrieve(ctx context.Context, filter Filter) *Future[T] {
	f := newFuture[T]()
	a.pool.Submit(func() {
		f.resolve(a.repo.DeleteAndRetrieve(ctx, filter))
	})
	return f
}

func (a *Async[T]) DeleteAll(ctx context.Context) *Future[Ack] {
	f := newFuture[Ack]()
	a.pool.Submit(func() {
		f.resolve(Ack{}, a.repo.DeleteAll(ctx))
	})
	return f
}
