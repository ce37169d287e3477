// Package search implements the cache-first word lookup: a local snapshot is
// emitted at once, the remote dictionary is queried, the cache is reconciled
// and the refreshed snapshot is emitted.
package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/myenglish-lookup/internal/config"
	"github.com/heartmarshall/myenglish-lookup/internal/domain"
	"github.com/heartmarshall/myenglish-lookup/internal/observe"
	"github.com/heartmarshall/myenglish-lookup/pkg/ctxutil"
)

type wordStore interface {
	FindByInfix(ctx context.Context, fragment string) ([]domain.WordRecord, error)
	ReplaceAll(ctx context.Context, records []domain.WordRecord) error
	AllByRecency(ctx context.Context) ([]domain.WordRecord, error)
}

type dictionaryClient interface {
	Fetch(ctx context.Context, word string) ([]domain.WordRecord, error)
}

// Pipeline runs one lookup per Search call.
type Pipeline struct {
	log          *slog.Logger
	store        wordStore
	dict         dictionaryClient
	metrics      *observe.Metrics
	fetchTimeout time.Duration
}

// NewPipeline creates a Pipeline.
func NewPipeline(
	logger *slog.Logger,
	store wordStore,
	dict dictionaryClient,
	metrics *observe.Metrics,
	cfg config.SearchConfig,
) *Pipeline {
	return &Pipeline{
		log:          logger.With("service", "search"),
		store:        store,
		dict:         dict,
		metrics:      metrics,
		fetchTimeout: cfg.FetchTimeout,
	}
}

// Search starts a lookup and returns its stream: Pending with the cached
// matches, then exactly one of Ready or Failed, then the channel is closed.
// A blank query yields a closed channel with no emissions.
//
// Cancelling ctx stops further emissions. A remote fetch that has already
// been dispatched runs to completion (bounded by the fetch timeout) and
// still reconciles the cache.
//
// The channel is unbuffered; the caller must drain it or cancel ctx.
func (p *Pipeline) Search(ctx context.Context, query string) <-chan QueryResult {
	out := make(chan QueryResult)

	query = domain.NormalizeQuery(query)
	if query == "" {
		close(out)
		return out
	}

	go p.run(ctx, query, out)
	return out
}

// Recent emits a single Ready with every cached record, newest first.
func (p *Pipeline) Recent(ctx context.Context) <-chan QueryResult {
	out := make(chan QueryResult)

	go func() {
		defer close(out)

		words, err := p.store.AllByRecency(ctx)
		if err != nil {
			p.storageError(ctx, "list by recency", err)
			words = nil
		}
		p.emit(ctx, out, Ready(words))
	}()

	return out
}

func (p *Pipeline) run(ctx context.Context, query string, out chan<- QueryResult) {
	defer close(out)

	local := p.findLocal(ctx, query)
	if !p.emit(ctx, out, Pending(local)) {
		return
	}

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.fetchTimeout)
	defer cancel()

	fetched, err := p.dict.Fetch(fetchCtx, query)
	if err != nil {
		kind := failureKind(err)
		p.logger(ctx).InfoContext(ctx, "dictionary fetch failed",
			slog.String("query", query),
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		p.metrics.RecordSearchResult(ctx, StatusFailed.String(), kind)
		p.emit(ctx, out, Failed(Reason(query, err), err, local))
		return
	}

	words := p.reconcile(fetchCtx, ctx, query, fetched)
	p.metrics.RecordSearchResult(ctx, StatusReady.String(), "")
	p.emit(ctx, out, Ready(words))
}

// reconcile stores fetched under the keys the service returned and re-reads
// the cache. If the cache cannot be written or read, the fetched records
// matching query are returned instead.
func (p *Pipeline) reconcile(writeCtx, ctx context.Context, query string, fetched []domain.WordRecord) []domain.WordRecord {
	if err := p.store.ReplaceAll(writeCtx, fetched); err != nil {
		p.storageError(ctx, "replace", err)
		return matching(fetched, query)
	}

	if ctx.Err() != nil {
		// Nobody will see the re-read.
		return nil
	}

	words, err := p.store.FindByInfix(writeCtx, query)
	if err != nil {
		p.storageError(ctx, "find by infix", err)
		return matching(fetched, query)
	}
	return words
}

func (p *Pipeline) findLocal(ctx context.Context, query string) []domain.WordRecord {
	words, err := p.store.FindByInfix(ctx, query)
	if err != nil {
		p.storageError(ctx, "find by infix", err)
		return []domain.WordRecord{}
	}
	return words
}

func (p *Pipeline) storageError(ctx context.Context, op string, err error) {
	p.logger(ctx).WarnContext(ctx, "word cache unavailable, treating as miss",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	p.metrics.RecordStorageError(ctx, op)
}

// logger tags the log with the feed job, if any.
func (p *Pipeline) logger(ctx context.Context) *slog.Logger {
	if id, ok := ctxutil.JobIDFromCtx(ctx); ok {
		return p.log.With(slog.String("job_id", id.String()))
	}
	return p.log
}

// emit sends r unless ctx is done. It reports whether r was sent.
func (p *Pipeline) emit(ctx context.Context, out chan<- QueryResult, r QueryResult) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

func matching(records []domain.WordRecord, query string) []domain.WordRecord {
	merged := domain.MergeByWord(records)
	out := make([]domain.WordRecord, 0, len(merged))
	for _, r := range merged {
		if domain.ContainsFold(r.Word, query) {
			out = append(out, r)
		}
	}
	return out
}
