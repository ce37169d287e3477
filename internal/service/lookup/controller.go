// Package lookup is the consumer-facing facade over search, voice input and
// narration.
package lookup

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-lookup/internal/domain"
	"github.com/heartmarshall/myenglish-lookup/internal/service/narration"
	"github.com/heartmarshall/myenglish-lookup/internal/service/search"
	"github.com/heartmarshall/myenglish-lookup/internal/service/speech"
)

type feed interface {
	Search(query string) uuid.UUID
	Recent() uuid.UUID
	Results() <-chan search.Snapshot
	Close()
}

type voice interface {
	OnTranscript(fn func(text string))
	Subscribe() (<-chan speech.State, func())
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Close()
}

type narrator interface {
	Speak(ctx context.Context, item domain.WordRecord, index int) error
	State() narration.State
	Close() error
}

// Controller wires recognized speech into search and exposes one stream of
// search snapshots.
type Controller struct {
	log       *slog.Logger
	feed      feed
	voice     voice
	narration narrator
}

// NewController creates a Controller. Text recognized by voice is searched.
func NewController(logger *slog.Logger, f feed, v voice, n narrator) *Controller {
	c := &Controller{
		log:       logger.With("service", "lookup"),
		feed:      f,
		voice:     v,
		narration: n,
	}
	v.OnTranscript(c.onTranscript)
	return c
}

// Search supersedes any running lookup with query.
func (c *Controller) Search(query string) uuid.UUID {
	return c.feed.Search(query)
}

// Recent supersedes any running lookup with the cached words, newest first.
func (c *Controller) Recent() uuid.UUID {
	return c.feed.Recent()
}

// Results is the snapshot stream of the latest lookup.
func (c *Controller) Results() <-chan search.Snapshot {
	return c.feed.Results()
}

// Speak toggles narration of item at index.
func (c *Controller) Speak(ctx context.Context, item domain.WordRecord, index int) error {
	return c.narration.Speak(ctx, item, index)
}

// Narration returns the current narration state.
func (c *Controller) Narration() narration.State {
	return c.narration.State()
}

// StartVoiceInput requests a voice action and streams its states. The stream
// starts with the current state and closes once the session is idle again
// after being active, or when ctx is done.
func (c *Controller) StartVoiceInput(ctx context.Context) <-chan speech.State {
	states, unsubscribe := c.voice.Subscribe()
	out := make(chan speech.State)

	if err := c.voice.Start(ctx); err != nil {
		unsubscribe()
		if !errors.Is(err, context.Canceled) {
			c.log.WarnContext(ctx, "start voice input", slog.String("error", err.Error()))
		}
		close(out)
		return out
	}

	go func() {
		defer close(out)
		defer unsubscribe()

		seenActive := false
		for {
			select {
			case st, ok := <-states:
				if !ok {
					return
				}
				select {
				case out <- st:
				case <-ctx.Done():
					return
				}
				if st.Active() {
					seenActive = true
				} else if seenActive {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// StopVoiceInput abandons the current voice action.
func (c *Controller) StopVoiceInput(ctx context.Context) error {
	return c.voice.Stop(ctx)
}

// Close stops every lookup, releases the recognizer and shuts narration down.
func (c *Controller) Close() error {
	c.voice.Close()
	c.feed.Close()
	return c.narration.Close()
}

func (c *Controller) onTranscript(text string) {
	query := domain.NormalizeQuery(text)
	if query == "" {
		return
	}
	c.log.Info("voice query", slog.String("query", query))
	c.feed.Search(query)
}
