package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"feedstash/app/database"
)

// SourceLister supplies the current source set on each tick.
type SourceLister interface {
	ListAll(ctx context.Context) ([]database.Source, error)
}

// SourceProcessor runs the fetch-parse-ingest flow for one source.
type SourceProcessor interface {
	Process(ctx context.Context, source database.Source) error
}

// Scheduler drives periodic polling. Each tick fans out one goroutine
// per source, so a slow or unreachable source cannot delay the others
// within the same tick or push back the tick that follows. Stopping
// cancels the ticker loop only; dispatched runs finish on their own
// (their contexts are not derived from the scheduler's), bounded by the
// fetcher timeout.
type Scheduler struct {
	registry  SourceLister
	processor SourceProcessor
	interval  time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	inflight sync.WaitGroup
}

func New(registry SourceLister, processor SourceProcessor, interval time.Duration) *Scheduler {
	return &Scheduler{
		registry:  registry,
		processor: processor,
		interval:  interval,
	}
}

// Start moves the scheduler to the running state and polls immediately.
// Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(ctx, s.done)

	slog.Info("Scheduler started", "interval", s.interval)
}

// Stop cancels the ticker loop and waits for it to exit. In-flight
// source runs are left to complete. Stopping a stopped scheduler is a
// no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	slog.Info("Scheduler stopped")
}

// Running reports the current lifecycle state.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wait blocks until all dispatched source runs have finished.
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	sources, err := s.registry.ListAll(ctx)
	if err != nil {
		slog.Error("Failed to list sources for polling", "error", err)
		return
	}

	if len(sources) == 0 {
		slog.Debug("No sources registered")
		return
	}

	slog.Debug("Polling sources", "count", len(sources))

	for _, source := range sources {
		s.inflight.Add(1)
		go func(src database.Source) {
			defer s.inflight.Done()

			// independent of the scheduler lifecycle; the fetch
			// timeout bounds the run
			if err := s.processor.Process(context.Background(), src); err != nil {
				slog.Error("Source processing failed", "source", src.Title, "url", src.URL, "error", err)
			}
		}(source)
	}
}
