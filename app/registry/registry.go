package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"feedstash/app/database"
)

// ErrValidation marks malformed input to registry mutations. It is
// surfaced to the caller and never retried.
var ErrValidation = errors.New("invalid source")

// CascadeError reports a partial removal: the source record is gone but
// its dependent items could not be cleaned up.
type CascadeError struct {
	SourceID string
	Err      error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("source %s removed but item cleanup failed: %v", e.SourceID, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

// Registry manages the set of configured sources. Items reference
// sources by id only, so removal enumerates and deletes dependents
// explicitly rather than relying on the store.
type Registry struct {
	sources database.SourceRepository
	items   database.ItemRepository
}

func New(sources database.SourceRepository, items database.ItemRepository) *Registry {
	return &Registry{sources: sources, items: items}
}

// ListAll returns every source ordered by title ascending.
func (r *Registry) ListAll(ctx context.Context) ([]database.Source, error) {
	return r.sources.List(ctx)
}

func (r *Registry) Get(ctx context.Context, id string) (*database.Source, error) {
	source, err := r.sources.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, database.ErrNotFound
	}
	return source, nil
}

// Add registers a new source. Title and URL must be non-empty.
func (r *Registry) Add(ctx context.Context, title, url string) (*database.Source, error) {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)

	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", ErrValidation)
	}

	return r.sources.Insert(ctx, title, url)
}

// Remove deletes a source and then all items referencing it, returning
// the number of items removed. If the item cascade fails after the
// source record is gone, the partial failure is reported as a
// CascadeError instead of being swallowed.
func (r *Registry) Remove(ctx context.Context, id string) (int64, error) {
	if err := r.sources.Delete(ctx, id); err != nil {
		return 0, err
	}

	removed, err := r.items.DeleteBySource(ctx, id)
	if err != nil {
		return 0, &CascadeError{SourceID: id, Err: err}
	}

	return removed, nil
}
