package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var errShutdown = errors.New("console: narrator is shut down")

// wordsPerSecond paces the simulated utterance.
const wordsPerSecond = 3

// Narrator prints utterances instead of speaking them. An utterance counts as
// speaking for as long as it would take to read aloud.
type Narrator struct {
	w        io.Writer
	language string
	now      func() time.Time

	mu    sync.Mutex
	until time.Time
	down  bool
}

// NewNarrator writes utterances to w.
func NewNarrator(w io.Writer, language string) *Narrator {
	return &Narrator{w: w, language: language, now: time.Now}
}

func (n *Narrator) Speak(_ context.Context, id uuid.UUID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.down {
		return errShutdown
	}

	if _, err := fmt.Fprintf(n.w, "[%s %s] %s\n", n.language, id.String()[:8], text); err != nil {
		return err
	}
	words := len(strings.Fields(text))
	n.until = n.now().Add(time.Duration(words) * time.Second / wordsPerSecond)
	return nil
}

func (n *Narrator) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.until = time.Time{}
	return nil
}

func (n *Narrator) IsSpeaking() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.now().Before(n.until)
}

func (n *Narrator) Shutdown() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.down = true
	n.until = time.Time{}
	return nil
}
