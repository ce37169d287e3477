package speech

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/heartmarshall/myenglish-lookup/internal/config"
	"github.com/heartmarshall/myenglish-lookup/internal/observe"
)

// fakeRecognizer is a Recognizer whose events are pushed by the test.
type fakeRecognizer struct {
	mu     sync.Mutex
	events chan Event
	closed bool
	closes int
}

func newFakeRecognizer() *fakeRecognizer {
	return &fakeRecognizer{events: make(chan Event, 8)}
}

func (r *fakeRecognizer) Events() <-chan Event { return r.events }

func (r *fakeRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
	if !r.closed {
		r.closed = true
		close(r.events)
	}
	return nil
}

// emit reports false once the recognizer is closed.
func (r *fakeRecognizer) emit(ev Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.events <- ev
	return true
}

func (r *fakeRecognizer) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// fakeEngine records Open calls.
type fakeEngine struct {
	mu      sync.Mutex
	openErr error
	opts    []Options
	recs    []*fakeRecognizer
}

func (e *fakeEngine) Open(_ context.Context, opts Options) (Recognizer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts = append(e.opts, opts)
	if e.openErr != nil {
		return nil, e.openErr
	}
	rec := newFakeRecognizer()
	e.recs = append(e.recs, rec)
	return rec, nil
}

func (e *fakeEngine) opened() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.opts)
}

func (e *fakeEngine) recognizer(i int) *fakeRecognizer {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i >= len(e.recs) {
		return nil
	}
	return e.recs[i]
}

// fakeGate answers permission requests. When answers is non-nil, Request
// blocks until the test sends an answer.
type fakeGate struct {
	granted bool
	grant   bool
	err     error
	answers chan bool

	mu       sync.Mutex
	requests int
}

func (g *fakeGate) Granted() bool { return g.granted }

func (g *fakeGate) Request(ctx context.Context) (bool, error) {
	g.mu.Lock()
	g.requests++
	g.mu.Unlock()

	if g.answers != nil {
		select {
		case ok := <-g.answers:
			return ok, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return g.grant, g.err
}

func (g *fakeGate) requested() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests
}

func testMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	m, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m
}

func newTestSession(t *testing.T, engine Engine, gate PermissionGate, resetDelay time.Duration) *Session {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewSession(logger, engine, gate, testMetrics(t), config.SpeechConfig{
		Language:   "en-US",
		ResetDelay: resetDelay,
	})
	t.Cleanup(s.Close)
	return s
}
