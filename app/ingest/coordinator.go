package ingest

import (
	"context"
	"log/slog"

	"feedstash/app/database"
	"feedstash/app/feed"
)

// Coordinator stores parsed drafts, keeping at most one item per
// (source_id, guid) pair. Re-running it against an unchanged document
// is a no-op: existing items are never mutated, so a read item stays
// read no matter how often the remote re-serves it.
type Coordinator struct {
	items database.ItemRepository
}

func NewCoordinator(items database.ItemRepository) *Coordinator {
	return &Coordinator{items: items}
}

// Stats summarizes one ingestion run.
type Stats struct {
	Total   int
	New     int
	Known   int
	Skipped int
	Failed  int
}

// Run ingests drafts in document order. A store failure on one item is
// logged and does not abort the remaining items.
func (c *Coordinator) Run(ctx context.Context, sourceID string, drafts []feed.Draft) Stats {
	stats := Stats{Total: len(drafts)}

	for _, draft := range drafts {
		exists, err := c.items.Exists(ctx, sourceID, draft.GUID)
		if err != nil {
			stats.Failed++
			slog.Error("Item existence check failed", "source_id", sourceID, "guid", draft.GUID, "error", err)
			continue
		}
		if exists {
			stats.Known++
			continue
		}

		item := database.Item{
			SourceID:    sourceID,
			GUID:        draft.GUID,
			Title:       draft.Title,
			Link:        draft.Link,
			PublishedAt: draft.PublishedAt,
			Read:        false,
			Metadata:    database.Metadata(draft.Metadata),
		}

		inserted, err := c.items.InsertIfAbsent(ctx, item)
		if err != nil {
			stats.Failed++
			slog.Error("Item insert failed", "source_id", sourceID, "guid", draft.GUID, "error", err)
			continue
		}

		if inserted {
			stats.New++
		} else {
			// lost the race to a concurrent run for the same pair
			stats.Known++
		}
	}

	return stats
}
