package lookup

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-lookup/internal/domain"
	"github.com/heartmarshall/myenglish-lookup/internal/service/narration"
	"github.com/heartmarshall/myenglish-lookup/internal/service/search"
	"github.com/heartmarshall/myenglish-lookup/internal/service/speech"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFeed struct {
	mu       sync.Mutex
	searches []string
	recents  int
	closed   bool
	out      chan search.Snapshot
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{out: make(chan search.Snapshot)}
}

func (f *fakeFeed) Search(query string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, query)
	return uuid.New()
}

func (f *fakeFeed) Recent() uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recents++
	return uuid.New()
}

func (f *fakeFeed) Results() <-chan search.Snapshot { return f.out }

func (f *fakeFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeFeed) searched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

// fakeVoice replays scripted states on Start.
type fakeVoice struct {
	mu         sync.Mutex
	transcript func(string)
	startErr   error
	script     []speech.State
	states     chan speech.State
	unsubs     int
	starts     int
	stops      int
	closed     bool
}

func newFakeVoice(script ...speech.State) *fakeVoice {
	return &fakeVoice{script: script, states: make(chan speech.State, 16)}
}

func (v *fakeVoice) OnTranscript(fn func(string)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.transcript = fn
}

func (v *fakeVoice) Subscribe() (<-chan speech.State, func()) {
	v.states <- speech.State{Phase: speech.PhaseIdle}
	return v.states, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.unsubs++
	}
}

func (v *fakeVoice) Start(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.starts++
	if v.startErr != nil {
		return v.startErr
	}
	for _, st := range v.script {
		v.states <- st
	}
	return nil
}

func (v *fakeVoice) Stop(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stops++
	return nil
}

func (v *fakeVoice) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

func (v *fakeVoice) say(text string) {
	v.mu.Lock()
	fn := v.transcript
	v.mu.Unlock()
	fn(text)
}

func (v *fakeVoice) unsubscribed() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.unsubs
}

// NarratorMock is a func-field mock of narrator.
type NarratorMock struct {
	SpeakFunc func(ctx context.Context, item domain.WordRecord, index int) error
	StateFunc func() narration.State
	CloseFunc func() error
}

func (m *NarratorMock) Speak(ctx context.Context, item domain.WordRecord, index int) error {
	return m.SpeakFunc(ctx, item, index)
}

func (m *NarratorMock) State() narration.State { return m.StateFunc() }

func (m *NarratorMock) Close() error { return m.CloseFunc() }
