package database

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresItemRepository persists items in Postgres.
type PostgresItemRepository struct {
	db *DB
}

var _ ItemRepository = (*PostgresItemRepository)(nil)

func NewItemRepository(db *DB) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

func (r *PostgresItemRepository) Exists(ctx context.Context, sourceID, guid string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM items WHERE source_id = $1 AND guid = $2)
	`, sourceID, guid)
	if err != nil {
		return false, fmt.Errorf("failed to check item existence: %w", err)
	}
	return exists, nil
}

// InsertIfAbsent stores the item unless the (source_id, guid) pair is
// already present. The unique constraint makes the check-and-insert
// atomic; a conflict reports false with no error. Existing rows are
// never touched, so a re-observed item keeps its read state.
func (r *PostgresItemRepository) InsertIfAbsent(ctx context.Context, item Item) (bool, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO items (id, source_id, guid, title, link, published_at, is_read, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source_id, guid) DO NOTHING
	`, item.ID, item.SourceID, item.GUID, item.Title, item.Link,
		item.PublishedAt, item.Read, item.Metadata)
	if err != nil {
		return false, fmt.Errorf("failed to insert item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return affected > 0, nil
}

func buildListQuery(filter ItemFilter) (string, []interface{}, error) {
	q := psql.Select("id", "source_id", "guid", "title", "link",
		"published_at", "is_read", "metadata", "created_at").
		From("items").
		OrderBy("published_at DESC NULLS LAST", "created_at DESC")

	if filter.SourceID != nil {
		q = q.Where(sq.Eq{"source_id": *filter.SourceID})
	}
	if filter.Read != nil {
		q = q.Where(sq.Eq{"is_read": *filter.Read})
	}

	return q.ToSql()
}

// List returns items matching the filter, newest publish time first with
// unknown publish times last.
func (r *PostgresItemRepository) List(ctx context.Context, filter ItemFilter) ([]Item, error) {
	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build item query: %w", err)
	}

	var items []Item
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	return items, nil
}

// MarkRead flips the read flag to true and returns the updated item.
// Marking an already-read item is a no-op, not an error.
func (r *PostgresItemRepository) MarkRead(ctx context.Context, id string) (*Item, error) {
	var item Item
	err := r.db.GetContext(ctx, &item, `
		UPDATE items
		SET is_read = TRUE
		WHERE id = $1
		RETURNING id, source_id, guid, title, link, published_at, is_read, metadata, created_at
	`, id)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark item read: %w", err)
	}

	return &item, nil
}

func (r *PostgresItemRepository) CountUnread(ctx context.Context, sourceID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM items WHERE source_id = $1 AND is_read = FALSE
	`, sourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread items: %w", err)
	}
	return count, nil
}

func (r *PostgresItemRepository) CountAllUnread(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items WHERE is_read = FALSE`)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread items: %w", err)
	}
	return count, nil
}

func (r *PostgresItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items`)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// DeleteBySource removes all items belonging to a source and reports how
// many rows went away.
func (r *PostgresItemRepository) DeleteBySource(ctx context.Context, sourceID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE source_id = $1`, sourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete items for source: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}

	return affected, nil
}
