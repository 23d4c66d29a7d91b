package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresSourceRepository persists sources in Postgres.
type PostgresSourceRepository struct {
	db *DB
}

var _ SourceRepository = (*PostgresSourceRepository)(nil)

func NewSourceRepository(db *DB) *PostgresSourceRepository {
	return &PostgresSourceRepository{db: db}
}

// List returns all sources ordered by title ascending.
func (r *PostgresSourceRepository) List(ctx context.Context) ([]Source, error) {
	var sources []Source
	err := r.db.SelectContext(ctx, &sources, `
		SELECT id, title, url, created_at, updated_at
		FROM sources
		ORDER BY title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	return sources, nil
}

func (r *PostgresSourceRepository) GetByID(ctx context.Context, id string) (*Source, error) {
	var source Source
	err := r.db.GetContext(ctx, &source, `
		SELECT id, title, url, created_at, updated_at
		FROM sources
		WHERE id = $1
	`, id)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source by id: %w", err)
	}

	return &source, nil
}

func (r *PostgresSourceRepository) GetByURL(ctx context.Context, url string) (*Source, error) {
	var source Source
	err := r.db.GetContext(ctx, &source, `
		SELECT id, title, url, created_at, updated_at
		FROM sources
		WHERE url = $1
	`, url)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source by url: %w", err)
	}

	return &source, nil
}

func (r *PostgresSourceRepository) Insert(ctx context.Context, title, url string) (*Source, error) {
	var source Source
	err := r.db.GetContext(ctx, &source, `
		INSERT INTO sources (id, title, url)
		VALUES ($1, $2, $3)
		RETURNING id, title, url, created_at, updated_at
	`, uuid.NewString(), title, url)
	if err != nil {
		return nil, fmt.Errorf("failed to insert source: %w", err)
	}

	return &source, nil
}

// Delete removes the source record only. Dependent items are removed
// separately by the registry's cascade pass.
func (r *PostgresSourceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresSourceRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sources`)
	if err != nil {
		return 0, fmt.Errorf("failed to count sources: %w", err)
	}
	return count, nil
}
