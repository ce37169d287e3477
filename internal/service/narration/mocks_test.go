package narration

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/heartmarshall/myenglish-lookup/internal/observe"
)

// SpeakCall records a single invocation of fakeEngine.Speak.
type SpeakCall struct {
	ID   uuid.UUID
	Text string
}

// fakeEngine speaks until Stop or finish is called.
type fakeEngine struct {
	mu        sync.Mutex
	speaking  bool
	speakErr  error
	speaks    []SpeakCall
	stops     int
	shutdowns int
}

func (e *fakeEngine) Speak(_ context.Context, id uuid.UUID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speaks = append(e.speaks, SpeakCall{ID: id, Text: text})
	if e.speakErr != nil {
		return e.speakErr
	}
	e.speaking = true
	return nil
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
	e.speaking = false
	return nil
}

func (e *fakeEngine) IsSpeaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speaking
}

func (e *fakeEngine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdowns++
	return nil
}

// finish simulates the end of the current utterance.
func (e *fakeEngine) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speaking = false
}

func newTestSequencer(t *testing.T, engine Engine) *Sequencer {
	t.Helper()
	metrics, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return NewSequencer(slog.New(slog.NewTextHandler(io.Discard, nil)), engine, metrics)
}
