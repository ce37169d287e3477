package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/myenglish-lookup/internal/app"
	"github.com/heartmarshall/myenglish-lookup/internal/domain"
	"github.com/heartmarshall/myenglish-lookup/internal/service/lookup"
	"github.com/heartmarshall/myenglish-lookup/internal/service/search"
	"github.com/heartmarshall/myenglish-lookup/internal/service/speech"
)

var errNoWords = errors.New("no words given")

type shell struct {
	app   *app.App
	out   io.Writer
	log   *slog.Logger
	speak bool
}

func (s *shell) search(ctx context.Context, words []string) error {
	if len(words) == 0 {
		return errNoWords
	}
	for _, w := range words {
		job := s.app.Controller.Search(w)
		view, err := s.await(ctx, job)
		if err != nil {
			return err
		}
		if s.speak && len(view.Items) > 0 {
			if err := s.narrate(ctx, view.Items[0]); err != nil {
				s.log.Warn("narration", slog.String("error", err.Error()))
			}
		}
	}
	return nil
}

func (s *shell) recent(ctx context.Context) error {
	_, err := s.await(ctx, s.app.Controller.Recent())
	return err
}

// listen runs voice actions until input ends. Snapshots are printed as they
// arrive.
func (s *shell) listen(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		var view lookup.ViewState
		for {
			select {
			case snap, ok := <-s.app.Controller.Results():
				if !ok {
					return
				}
				view = s.print(view, snap)
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(s.out, "Say a word (type it and press enter). Ctrl-D to quit.")
	for ctx.Err() == nil {
		var failed speech.State
		for st := range s.app.Controller.StartVoiceInput(ctx) {
			if st.Message != "" {
				fmt.Fprintf(s.out, "  %s\n", st.Message)
			}
			if st.Err != nil {
				failed = st
			}
		}
		// The console recognizer reports end of input as a speech timeout.
		if failed.Message == speech.Message(speech.ErrorSpeechTimeout) {
			return nil
		}
		if failed.PermissionRequired {
			return failed.Err
		}
	}
	return nil
}

// warm prefetches words straight through the pipeline, bypassing the feed so
// the lookups run concurrently.
func (s *shell) warm(ctx context.Context, workers int, words []string) error {
	if len(words) == 0 {
		return errNoWords
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, w := range words {
		g.Go(func() error {
			var last search.QueryResult
			for r := range s.app.Pipeline.Search(ctx, w) {
				last = r
			}
			switch last.Status {
			case search.StatusReady:
				fmt.Fprintf(s.out, "%-12s cached %d record(s)\n", w, len(last.Words))
			case search.StatusFailed:
				fmt.Fprintf(s.out, "%-12s %s\n", w, last.Reason)
			}
			return ctx.Err()
		})
	}

	return g.Wait()
}

// await prints snapshots of job until its terminal one.
func (s *shell) await(ctx context.Context, job uuid.UUID) (lookup.ViewState, error) {
	var view lookup.ViewState
	for {
		select {
		case snap, ok := <-s.app.Controller.Results():
			if !ok {
				return view, errors.New("results closed")
			}
			if snap.JobID != job {
				continue
			}
			view = s.print(view, snap)
			if snap.Terminal() {
				return view, nil
			}
		case <-ctx.Done():
			return view, ctx.Err()
		}
	}
}

func (s *shell) print(view lookup.ViewState, snap search.Snapshot) lookup.ViewState {
	view, notice := lookup.Reduce(view, snap)

	label := snap.Query
	if label == "" {
		label = "(recent)"
	}
	fmt.Fprintf(s.out, "[%s] %s: %d word(s)\n", snap.Status, label, len(view.Items))
	if !view.Loading {
		for _, w := range view.Items {
			printWord(s.out, w)
		}
	}
	if notice != nil {
		fmt.Fprintf(s.out, "! %s\n", notice.Message)
	}
	return view
}

func printWord(out io.Writer, w domain.WordRecord) {
	fmt.Fprintf(out, "  %s %s\n", w.Word, w.Phonetic)
	for _, m := range w.Meanings {
		fmt.Fprintf(out, "    %s\n", m.PartOfSpeech)
		for i, d := range m.Definitions {
			fmt.Fprintf(out, "      %d. %s\n", i+1, d.Text)
			if d.Example != nil && *d.Example != "" {
				fmt.Fprintf(out, "         e.g. %s\n", *d.Example)
			}
		}
	}
}

func (s *shell) narrate(ctx context.Context, w domain.WordRecord) error {
	if err := s.app.Controller.Speak(ctx, w, 0); err != nil {
		return err
	}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for s.app.Controller.Narration().IsSpeaking {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
