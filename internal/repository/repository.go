package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Filter is a conjunction of column equality predicates. An empty filter
// matches every row.
type Filter map[string]any

func (f Filter) columns() []string {
	cols := make([]string, 0, len(f))
	for col := range f {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func (f Filter) String() string {
	parts := make([]string, 0, len(f))
	for _, col := range f.columns() {
		parts = append(parts, fmt.Sprintf("%s=%v", col, f[col]))
	}
	return strings.Join(parts, ",")
}

// ModelHandlers supplies the entity-specific knowledge a Repository needs.
// The repository itself never inspects T beyond these callbacks.
type ModelHandlers[T any] struct {
	NewRecord func() T
	GetID     func(T) uuid.UUID
	SetID     func(T, uuid.UUID)
}

// Repository is the blocking persistence contract shared by every aggregate.
// Each operation commits its own unit of work.
type Repository[T any] interface {
	// Find returns the unique record matching the filter. Zero matches yield
	// a record-not-found error, more than one an ambiguous-result error.
	Find(ctx context.Context, filter Filter) (T, error)
	Exists(ctx context.Context, filter Filter) (bool, error)
	// FindAll returns every record in unspecified order.
	FindAll(ctx context.Context) ([]T, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	// Save inserts a record without an id, assigning one; otherwise it
	// upserts by primary id. Saving the same state twice is a no-op.
	Save(ctx context.Context, record T) error
	// Delete removes every record matching the filter and reports whether
	// anything was removed.
	Delete(ctx context.Context, filter Filter) (bool, error)
	// DeleteAndRetrieve removes the unique matching record and returns its
	// last persisted state.
	DeleteAndRetrieve(ctx context.Context, filter Filter) (T, error)
	DeleteAll(ctx context.Context) error
}
