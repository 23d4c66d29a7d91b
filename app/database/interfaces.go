package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an operation references an unknown
// source or item id.
var ErrNotFound = errors.New("not found")

// SourceRepository defines database operations for sources.
type SourceRepository interface {
	List(ctx context.Context) ([]Source, error)
	GetByID(ctx context.Context, id string) (*Source, error)
	GetByURL(ctx context.Context, url string) (*Source, error)
	Insert(ctx context.Context, title, url string) (*Source, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// ItemRepository defines database operations for items. InsertIfAbsent
// is the dedup point: the (source_id, guid) uniqueness check and the
// insert happen in a single statement, so concurrent ingestion runs for
// the same source cannot race each other into a duplicate.
type ItemRepository interface {
	Exists(ctx context.Context, sourceID, guid string) (bool, error)
	InsertIfAbsent(ctx context.Context, item Item) (bool, error)
	List(ctx context.Context, filter ItemFilter) ([]Item, error)
	MarkRead(ctx context.Context, id string) (*Item, error)
	CountUnread(ctx context.Context, sourceID string) (int, error)
	CountAllUnread(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
	DeleteBySource(ctx context.Context, sourceID string) (int64, error)
}
