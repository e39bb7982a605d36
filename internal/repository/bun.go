package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// bunRepository implements Repository[T] on top of a bun.DB handle. It is
// dialect-agnostic; the same code runs against postgres and sqlite.
type bunRepository[T any] struct {
	db       *bun.DB
	handlers ModelHandlers[T]
}

// NewRepository builds a blocking repository for one aggregate.
func NewRepository[T any](db *bun.DB, handlers ModelHandlers[T]) Repository[T] {
	return &bunRepository[T]{db: db, handlers: handlers}
}

func (r *bunRepository[T]) Find(ctx context.Context, filter Filter) (T, error) {
	var zero T

	// Over-fetch one row past the first so ambiguity is detectable.
	records := make([]T, 0, 2)
	query := r.db.NewSelect().Model(&records).Limit(2)
	for _, col := range filter.columns() {
		query = query.Where("? = ?", bun.Ident(col), filter[col])
	}

	if err := query.Scan(ctx); err != nil {
		return zero, wrapStorage(err, "find")
	}

	switch len(records) {
	case 0:
		return zero, NewRecordNotFound(filter)
	case 1:
		return records[0], nil
	default:
		return zero, NewAmbiguousResult(filter)
	}
}

func (r *bunRepository[T]) Exists(ctx context.Context, filter Filter) (bool, error) {
	query := r.db.NewSelect().Model(r.handlers.NewRecord())
	for _, col := range filter.columns() {
		query = query.Where("? = ?", bun.Ident(col), filter[col])
	}

	exists, err := query.Exists(ctx)
	if err != nil {
		return false, wrapStorage(err, "exists")
	}
	return exists, nil
}

func (r *bunRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	records := make([]T, 0)
	if err := r.db.NewSelect().Model(&records).Scan(ctx); err != nil {
		return nil, wrapStorage(err, "find all")
	}
	return records, nil
}

func (r *bunRepository[T]) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	err := r.db.NewSelect().
		Model(r.handlers.NewRecord()).
		Column("id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, wrapStorage(err, "list ids")
	}
	return ids, nil
}

func (r *bunRepository[T]) Save(ctx context.Context, record T) error {
	id := r.handlers.GetID(record)
	if id == uuid.Nil {
		r.handlers.SetID(record, uuid.New())
		if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
			return wrapStorage(err, "insert")
		}
		return nil
	}

	exists, err := r.Exists(ctx, Filter{"id": id})
	if err != nil {
		return err
	}
	if !exists {
		if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
			return wrapStorage(err, "insert")
		}
		return nil
	}

	if _, err := r.db.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
		return wrapStorage(err, "update")
	}
	return nil
}

func (r *bunRepository[T]) Delete(ctx context.Context, filter Filter) (bool, error) {
	query := r.db.NewDelete().Model(r.handlers.NewRecord())
	for _, col := range filter.columns() {
		query = query.Where("? = ?", bun.Ident(col), filter[col])
	}

	res, err := query.Exec(ctx)
	if err != nil {
		return false, wrapStorage(err, "delete")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, wrapStorage(err, "delete")
	}
	return affected > 0, nil
}

func (r *bunRepository[T]) DeleteAndRetrieve(ctx context.Context, filter Filter) (T, error) {
	var zero T

	record, err := r.Find(ctx, filter)
	if err != nil {
		return zero, err
	}

	if _, err := r.Delete(ctx, Filter{"id": r.handlers.GetID(record)}); err != nil {
		return zero, err
	}
	return record, nil
}

func (r *bunRepository[T]) DeleteAll(ctx context.Context) error {
	_, err := r.db.NewDelete().
		Model(r.handlers.NewRecord()).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return wrapStorage(err, "delete all")
	}
	return nil
}
