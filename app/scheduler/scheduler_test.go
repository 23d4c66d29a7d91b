package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedstash/app/database"
)

type fakeLister struct {
	mu      sync.Mutex
	sources []database.Source
	err     error
}

func (f *fakeLister) ListAll(ctx context.Context) ([]database.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.sources, nil
}

type recordingProcessor struct {
	mu        sync.Mutex
	processed []string
	failURLs  map[string]bool
	blockURL  string
	release   chan struct{}
}

func newRecordingProcessor() *recordingProcessor {
	return &recordingProcessor{
		failURLs: make(map[string]bool),
		release:  make(chan struct{}),
	}
}

func (p *recordingProcessor) Process(ctx context.Context, source database.Source) error {
	if source.URL == p.blockURL {
		<-p.release
	}

	p.mu.Lock()
	p.processed = append(p.processed, source.URL)
	p.mu.Unlock()

	if p.failURLs[source.URL] {
		return fmt.Errorf("simulated failure for %s", source.URL)
	}
	return nil
}

func (p *recordingProcessor) processedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.processed)
}

func (p *recordingProcessor) processedURLs() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	counts := make(map[string]int)
	for _, url := range p.processed {
		counts[url]++
	}
	return counts
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func threeSources() []database.Source {
	return []database.Source{
		{ID: "a", Title: "A", URL: "http://feed.example/a"},
		{ID: "b", Title: "B", URL: "http://feed.example/b"},
		{ID: "c", Title: "C", URL: "http://feed.example/c"},
	}
}

func TestSchedulerProcessesAllSourcesOnTick(t *testing.T) {
	lister := &fakeLister{sources: threeSources()}
	processor := newRecordingProcessor()

	s := New(lister, processor, time.Hour)
	s.Start()
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return processor.processedCount() == 3 })
	s.Wait()

	counts := processor.processedURLs()
	assert.Equal(t, 1, counts["http://feed.example/a"])
	assert.Equal(t, 1, counts["http://feed.example/b"])
	assert.Equal(t, 1, counts["http://feed.example/c"])
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	lister := &fakeLister{}
	processor := newRecordingProcessor()

	s := New(lister, processor, time.Hour)

	s.Stop() // stopping a stopped scheduler is a no-op
	assert.False(t, s.Running())

	s.Start()
	s.Start() // starting a running scheduler is a no-op
	assert.True(t, s.Running())

	s.Stop()
	s.Stop()
	assert.False(t, s.Running())
}

func TestSchedulerFailureIsolation(t *testing.T) {
	lister := &fakeLister{sources: threeSources()}
	processor := newRecordingProcessor()
	processor.failURLs["http://feed.example/b"] = true

	s := New(lister, processor, time.Hour)
	s.Start()
	defer s.Stop()

	// one failing source does not prevent the other two
	waitFor(t, 2*time.Second, func() bool { return processor.processedCount() == 3 })
}

func TestSchedulerSlowSourceDoesNotBlockOthers(t *testing.T) {
	lister := &fakeLister{sources: threeSources()}
	processor := newRecordingProcessor()
	processor.blockURL = "http://feed.example/a"

	s := New(lister, processor, time.Hour)
	s.Start()

	waitFor(t, 2*time.Second, func() bool {
		counts := processor.processedURLs()
		return counts["http://feed.example/b"] == 1 && counts["http://feed.example/c"] == 1
	})

	close(processor.release)
	s.Stop()
	s.Wait()
}

func TestSchedulerStopLeavesInflightRunning(t *testing.T) {
	lister := &fakeLister{sources: []database.Source{{ID: "a", URL: "http://feed.example/a"}}}
	processor := newRecordingProcessor()
	processor.blockURL = "http://feed.example/a"

	s := New(lister, processor, time.Hour)
	s.Start()

	// give the startup tick a moment to dispatch the run
	time.Sleep(50 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on an in-flight run")
	}

	assert.Equal(t, 0, processor.processedCount())

	close(processor.release)
	s.Wait()
	assert.Equal(t, 1, processor.processedCount())
}

func TestSchedulerRecurringTicks(t *testing.T) {
	lister := &fakeLister{sources: []database.Source{{ID: "a", URL: "http://feed.example/a"}}}
	processor := newRecordingProcessor()

	s := New(lister, processor, 20*time.Millisecond)
	s.Start()
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return processor.processedCount() >= 3 })
}

func TestSchedulerListErrorDoesNotStopTicking(t *testing.T) {
	lister := &fakeLister{err: fmt.Errorf("registry unavailable")}
	processor := newRecordingProcessor()

	s := New(lister, processor, 20*time.Millisecond)
	s.Start()
	defer s.Stop()

	time.Sleep(60 * time.Millisecond)

	lister.mu.Lock()
	lister.err = nil
	lister.sources = []database.Source{{ID: "a", URL: "http://feed.example/a"}}
	lister.mu.Unlock()

	waitFor(t, 2*time.Second, func() bool { return processor.processedCount() >= 1 })
}

func TestSchedulerRestart(t *testing.T) {
	lister := &fakeLister{sources: []database.Source{{ID: "a", URL: "http://feed.example/a"}}}
	processor := newRecordingProcessor()

	s := New(lister, processor, time.Hour)

	s.Start()
	waitFor(t, 2*time.Second, func() bool { return processor.processedCount() == 1 })
	s.Stop()

	s.Start()
	waitFor(t, 2*time.Second, func() bool { return processor.processedCount() == 2 })
	s.Stop()

	require.False(t, s.Running())
}
