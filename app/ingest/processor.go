package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"feedstash/app/database"
	"feedstash/app/feed"
)

// Processor runs the fetch-parse-ingest flow for one source. Fetch and
// parse failures are terminal for the run; the next scheduled tick
// retries naturally.
type Processor struct {
	fetcher     *feed.Fetcher
	parser      *feed.Parser
	coordinator *Coordinator
}

func NewProcessor(fetcher *feed.Fetcher, parser *feed.Parser, coordinator *Coordinator) *Processor {
	return &Processor{
		fetcher:     fetcher,
		parser:      parser,
		coordinator: coordinator,
	}
}

func (p *Processor) Process(ctx context.Context, source database.Source) error {
	start := time.Now()

	body, err := p.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	drafts, skipped, err := p.parser.Run(body)
	if err != nil {
		var parseErr *feed.ParseError
		if errors.As(err, &parseErr) {
			parseErr.URL = source.URL
		}
		return err
	}

	stats := p.coordinator.Run(ctx, source.ID, drafts)
	stats.Skipped += skipped

	slog.Info("Source processed",
		"source", source.Title,
		"url", source.URL,
		"duration", time.Since(start),
		"total", stats.Total,
		"new", stats.New,
		"known", stats.Known,
		"skipped", stats.Skipped,
		"failed", stats.Failed)

	return nil
}
