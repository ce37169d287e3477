package search

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/heartmarshall/myenglish-lookup/internal/config"
	"github.com/heartmarshall/myenglish-lookup/internal/domain"
	"github.com/heartmarshall/myenglish-lookup/internal/observe"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockWordStore struct {
	FindByInfixFunc  func(ctx context.Context, fragment string) ([]domain.WordRecord, error)
	ReplaceAllFunc   func(ctx context.Context, records []domain.WordRecord) error
	AllByRecencyFunc func(ctx context.Context) ([]domain.WordRecord, error)
}

func (m *mockWordStore) FindByInfix(ctx context.Context, fragment string) ([]domain.WordRecord, error) {
	return m.FindByInfixFunc(ctx, fragment)
}

func (m *mockWordStore) ReplaceAll(ctx context.Context, records []domain.WordRecord) error {
	return m.ReplaceAllFunc(ctx, records)
}

func (m *mockWordStore) AllByRecency(ctx context.Context) ([]domain.WordRecord, error) {
	return m.AllByRecencyFunc(ctx)
}

type mockDictionary struct {
	FetchFunc func(ctx context.Context, word string) ([]domain.WordRecord, error)
}

func (m *mockDictionary) Fetch(ctx context.Context, word string) ([]domain.WordRecord, error) {
	return m.FetchFunc(ctx, word)
}

// memStore is an in-memory word cache with the same semantics as the SQL stores.
type memStore struct {
	mu       sync.Mutex
	entries  []domain.CacheEntry
	nextID   int64
	replaces int
}

func newMemStore(records ...domain.WordRecord) *memStore {
	s := &memStore{}
	for _, r := range records {
		_ = s.ReplaceAll(context.Background(), []domain.WordRecord{r})
	}
	s.replaces = 0
	return s
}

func (s *memStore) FindByInfix(_ context.Context, fragment string) ([]domain.WordRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.WordRecord{}
	for _, e := range s.entries {
		if domain.ContainsFold(e.Word, fragment) {
			out = append(out, e.WordRecord)
		}
	}
	return out, nil
}

func (s *memStore) ReplaceAll(_ context.Context, records []domain.WordRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := domain.MergeByWord(records)
	keys := domain.Keys(merged)
	s.entries = slices.DeleteFunc(s.entries, func(e domain.CacheEntry) bool {
		return slices.Contains(keys, e.Word)
	})
	for _, r := range merged {
		s.nextID++
		s.entries = append(s.entries, domain.CacheEntry{ID: s.nextID, WordRecord: r})
	}
	s.replaces++
	return nil
}

func (s *memStore) AllByRecency(_ context.Context) ([]domain.WordRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.WordRecord, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, s.entries[i].WordRecord)
	}
	return out, nil
}

func (s *memStore) replaceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaces
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestPipeline(t *testing.T, store wordStore, dict dictionaryClient) *Pipeline {
	t.Helper()
	metrics, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPipeline(logger, store, dict, metrics, config.SearchConfig{FetchTimeout: 5 * time.Second})
}

func word(w, phonetic string) domain.WordRecord {
	return domain.WordRecord{
		Word:     w,
		Phonetic: phonetic,
		Meanings: []domain.Meaning{{
			PartOfSpeech: "noun",
			Definitions:  []domain.Definition{{Text: "definition of " + w}},
		}},
	}
}

func fetchReturns(records ...domain.WordRecord) *mockDictionary {
	return &mockDictionary{FetchFunc: func(context.Context, string) ([]domain.WordRecord, error) {
		return records, nil
	}}
}

// drain reads ch until it is closed.
func drain[T any](t *testing.T, ch <-chan T) []T {
	t.Helper()
	var got []T
	timeout := time.After(5 * time.Second)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, v)
		case <-timeout:
			t.Fatalf("stream not closed after 5s, got %d values", len(got))
			return got
		}
	}
}
