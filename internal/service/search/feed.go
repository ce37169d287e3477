package search

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-lookup/pkg/ctxutil"
)

type streamer interface {
	Search(ctx context.Context, query string) <-chan QueryResult
	Recent(ctx context.Context) <-chan QueryResult
}

// Feed serializes lookups for a single consumer. Each Search or Recent call
// supersedes the previous one: once the call returns, no snapshot of an
// earlier job can reach Results.
type Feed struct {
	log      *slog.Logger
	pipeline streamer
	out      chan Snapshot

	base     context.Context
	stopBase context.CancelFunc

	jobMu  sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool

	// sendMu is held for the whole of each delivery to out.
	sendMu sync.Mutex
	wg     sync.WaitGroup
}

// NewFeed creates a Feed over pipeline.
func NewFeed(logger *slog.Logger, pipeline streamer) *Feed {
	base, stop := context.WithCancel(context.Background())
	return &Feed{
		log:      logger.With("service", "search_feed"),
		pipeline: pipeline,
		out:      make(chan Snapshot),
		base:     base,
		stopBase: stop,
	}
}

// Results is the single, ordered snapshot stream. It is closed by Close.
func (f *Feed) Results() <-chan Snapshot {
	return f.out
}

// Search supersedes the current job with a lookup of query and returns the
// new job id. A blank query still supersedes the current job but produces no
// snapshots. After Close it returns uuid.Nil.
func (f *Feed) Search(query string) uuid.UUID {
	return f.start(query, func(ctx context.Context) <-chan QueryResult {
		return f.pipeline.Search(ctx, query)
	})
}

// Recent supersedes the current job with a dump of the cache, newest first.
func (f *Feed) Recent() uuid.UUID {
	return f.start("", f.pipeline.Recent)
}

// Close cancels the current job, waits for its delivery to stop and closes
// Results. It is safe to call more than once.
func (f *Feed) Close() {
	f.jobMu.Lock()
	if f.closed {
		f.jobMu.Unlock()
		return
	}
	f.closed = true
	f.gen++
	if f.cancel != nil {
		f.cancel()
	}
	f.stopBase()
	f.jobMu.Unlock()

	f.wg.Wait()
	close(f.out)
}

func (f *Feed) start(query string, open func(ctx context.Context) <-chan QueryResult) uuid.UUID {
	f.jobMu.Lock()
	if f.closed {
		f.jobMu.Unlock()
		return uuid.Nil
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	gen := f.gen
	id := uuid.New()
	ctx, cancel := context.WithCancel(ctxutil.WithJobID(f.base, id))
	f.cancel = cancel
	f.wg.Add(1)
	f.jobMu.Unlock()

	// Wait out a delivery of the superseded job that may be mid-send.
	f.sendMu.Lock()
	f.sendMu.Unlock() //nolint:staticcheck // barrier

	f.log.Debug("search job started", slog.String("job_id", id.String()), slog.String("query", query))

	go f.deliver(ctx, gen, id, query, open(ctx))
	return id
}

func (f *Feed) deliver(ctx context.Context, gen uint64, id uuid.UUID, query string, in <-chan QueryResult) {
	defer f.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-in:
			if !ok {
				return
			}
			if !f.send(ctx, gen, Snapshot{JobID: id, Query: query, QueryResult: r}) {
				return
			}
		}
	}
}

// send delivers s if gen is still current. It reports whether the job may
// continue.
func (f *Feed) send(ctx context.Context, gen uint64, s Snapshot) bool {
	f.sendMu.Lock()
	defer f.sendMu.Unlock()

	if !f.current(gen) {
		return false
	}

	select {
	case f.out <- s:
		return true
	case <-ctx.Done():
		return false
	}
}

func (f *Feed) current(gen uint64) bool {
	f.jobMu.Lock()
	defer f.jobMu.Unlock()
	return gen == f.gen
}
