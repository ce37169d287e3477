// Package narration reads dictionary records aloud, one at a time.
package narration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-lookup/internal/domain"
	"github.com/heartmarshall/myenglish-lookup/internal/observe"
)

// ErrUnavailable is returned when the text-to-speech engine is missing, failed
// to initialize or was shut down.
var ErrUnavailable = errors.New("narration: text-to-speech unavailable")

// Engine is a text-to-speech backend. A new Speak flushes whatever is queued.
type Engine interface {
	Speak(ctx context.Context, utteranceID uuid.UUID, text string) error
	Stop() error
	IsSpeaking() bool
	Shutdown() error
}

// State is the observable narration state. ActiveIndex is nil when nothing
// is being read.
type State struct {
	ActiveIndex *int
	IsSpeaking  bool
}

// Sequencer toggles narration of list items so that at most one is read at a
// time.
type Sequencer struct {
	log     *slog.Logger
	metrics *observe.Metrics

	mu     sync.Mutex
	engine Engine
	active *int
}

// NewSequencer wraps engine. A nil engine yields a disabled sequencer.
func NewSequencer(logger *slog.Logger, engine Engine, metrics *observe.Metrics) *Sequencer {
	return &Sequencer{
		log:     logger.With("service", "narration"),
		metrics: metrics,
		engine:  engine,
	}
}

// Enabled reports whether Speak can reach an engine.
func (s *Sequencer) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine != nil
}

// Speak toggles narration of item at index:
//   - nothing speaking: start index;
//   - speaking the same index: stop;
//   - speaking another index: stop it and start index.
func (s *Sequencer) Speak(ctx context.Context, item domain.WordRecord, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return ErrUnavailable
	}

	if s.active != nil && s.engine.IsSpeaking() {
		same := *s.active == index
		if err := s.engine.Stop(); err != nil {
			return fmt.Errorf("narration: stop: %w", err)
		}
		s.active = nil
		if same {
			s.log.DebugContext(ctx, "narration stopped", slog.Int("index", index))
			return nil
		}
	}

	id := uuid.New()
	if err := s.engine.Speak(ctx, id, Text(item)); err != nil {
		s.active = nil
		return fmt.Errorf("narration: speak %q: %w", item.Word, err)
	}
	s.active = &index
	s.metrics.RecordUtterance(ctx)
	s.log.DebugContext(ctx, "narration started",
		slog.Int("index", index),
		slog.String("word", item.Word),
		slog.String("utterance_id", id.String()),
	)
	return nil
}

// State returns the current state. A finished utterance clears ActiveIndex.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil || s.active == nil {
		return State{}
	}
	if !s.engine.IsSpeaking() {
		s.active = nil
		return State{}
	}
	idx := *s.active
	return State{ActiveIndex: &idx, IsSpeaking: true}
}

// Close stops narration and shuts the engine down. Later calls to Speak
// return ErrUnavailable.
func (s *Sequencer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return nil
	}
	engine := s.engine
	s.engine = nil
	s.active = nil

	return errors.Join(engine.Stop(), engine.Shutdown())
}
