// Package console provides terminal stand-ins for the platform speech
// recognizer and text-to-speech engine, used by the development shell.
package console

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/heartmarshall/myenglish-lookup/internal/service/speech"
)

// SpeechEngine "recognizes" lines typed on a reader. Each Open consumes one
// line; a recognizer closed while waiting still consumes the next one.
type SpeechEngine struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
}

// NewSpeechEngine reads utterances from r.
func NewSpeechEngine(r io.Reader) *SpeechEngine {
	return &SpeechEngine{scanner: bufio.NewScanner(r)}
}

// Open starts listening for the next line.
func (e *SpeechEngine) Open(ctx context.Context, opts speech.Options) (speech.Recognizer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := &lineRecognizer{
		events: make(chan speech.Event),
		done:   make(chan struct{}),
	}
	go rec.run(e)
	return rec, nil
}

// next blocks for one line. ok is false at end of input.
func (e *SpeechEngine) next() (line string, ok bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.scanner.Scan() {
		return "", false, e.scanner.Err()
	}
	return e.scanner.Text(), true, nil
}

type lineRecognizer struct {
	events chan speech.Event
	done   chan struct{}
	once   sync.Once
}

func (r *lineRecognizer) Events() <-chan speech.Event { return r.events }

func (r *lineRecognizer) Close() error {
	r.once.Do(func() { close(r.done) })
	return nil
}

func (r *lineRecognizer) run(e *SpeechEngine) {
	defer close(r.events)

	if !r.emit(speech.Event{Kind: speech.EventReadyForSpeech}) {
		return
	}

	line, ok, err := e.next()
	switch {
	case err != nil:
		r.emit(speech.Event{Kind: speech.EventError, Code: speech.ErrorAudio})
		return
	case !ok:
		r.emit(speech.Event{Kind: speech.EventError, Code: speech.ErrorSpeechTimeout})
		return
	}

	if !r.emit(speech.Event{Kind: speech.EventBeginningOfSpeech}) ||
		!r.emit(speech.Event{Kind: speech.EventEndOfSpeech}) {
		return
	}

	var texts []string
	if line = strings.TrimSpace(line); line != "" {
		texts = []string{line}
	}
	r.emit(speech.Event{Kind: speech.EventResults, Texts: texts})
}

func (r *lineRecognizer) emit(ev speech.Event) bool {
	select {
	case r.events <- ev:
		return true
	case <-r.done:
		return false
	}
}

// Gate is a fixed microphone permission.
type Gate struct {
	Allowed bool
}

func (g Gate) Granted() bool { return g.Allowed }

func (g Gate) Request(context.Context) (bool, error) { return g.Allowed, nil }
