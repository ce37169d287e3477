package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/myenglish-lookup/internal/domain"
	"github.com/heartmarshall/myenglish-lookup/internal/service/narration"
	"github.com/heartmarshall/myenglish-lookup/internal/service/speech"
)

func collect(t *testing.T, ch <-chan speech.State) []speech.Phase {
	t.Helper()
	var phases []speech.Phase
	timeout := time.After(2 * time.Second)
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				return phases
			}
			phases = append(phases, st.Phase)
		case <-timeout:
			t.Fatal("voice stream not closed")
		}
	}
}

func TestController_TranscriptSearches(t *testing.T) {
	t.Parallel()

	f := newFakeFeed()
	v := newFakeVoice()
	NewController(discardLogger(), f, v, &NarratorMock{})

	v.say("  hello   world ")
	v.say("   ")

	assert.Equal(t, []string{"hello world"}, f.searched())
}

func TestController_StartVoiceInput(t *testing.T) {
	t.Parallel()

	v := newFakeVoice(
		speech.State{Phase: speech.PhaseListening, Message: speech.MsgLoading},
		speech.State{Phase: speech.PhaseProcessing, Message: speech.MsgProcessing},
		speech.State{Phase: speech.PhaseIdle},
		speech.State{Phase: speech.PhaseListening},
	)
	c := NewController(discardLogger(), newFakeFeed(), v, &NarratorMock{})

	phases := collect(t, c.StartVoiceInput(context.Background()))

	assert.Equal(t, []speech.Phase{
		speech.PhaseIdle,
		speech.PhaseListening,
		speech.PhaseProcessing,
		speech.PhaseIdle,
	}, phases)
	require.Eventually(t, func() bool { return v.unsubscribed() == 1 }, time.Second, 5*time.Millisecond)
}

func TestController_StartVoiceInputError(t *testing.T) {
	t.Parallel()

	v := newFakeVoice()
	v.startErr = speech.ErrClosed
	c := NewController(discardLogger(), newFakeFeed(), v, &NarratorMock{})

	assert.Empty(t, collect(t, c.StartVoiceInput(context.Background())))
	assert.Equal(t, 1, v.unsubscribed())
}

func TestController_StartVoiceInputCancelled(t *testing.T) {
	t.Parallel()

	v := newFakeVoice(speech.State{Phase: speech.PhaseListening})
	c := NewController(discardLogger(), newFakeFeed(), v, &NarratorMock{})

	ctx, cancel := context.WithCancel(context.Background())
	ch := c.StartVoiceInput(ctx)
	assert.Equal(t, speech.PhaseIdle, (<-ch).Phase)
	assert.Equal(t, speech.PhaseListening, (<-ch).Phase)
	cancel()

	assert.Empty(t, collect(t, ch))
}

func TestController_Narration(t *testing.T) {
	t.Parallel()

	idx := 3
	var gotIndex int
	n := &NarratorMock{
		SpeakFunc: func(_ context.Context, item domain.WordRecord, index int) error {
			gotIndex = index
			if item.Word == "" {
				return narration.ErrUnavailable
			}
			return nil
		},
		StateFunc: func() narration.State {
			return narration.State{ActiveIndex: &idx, IsSpeaking: true}
		},
	}
	c := NewController(discardLogger(), newFakeFeed(), newFakeVoice(), n)

	require.NoError(t, c.Speak(context.Background(), domain.WordRecord{Word: "cat"}, 3))
	assert.Equal(t, 3, gotIndex)
	assert.ErrorIs(t, c.Speak(context.Background(), domain.WordRecord{}, 1), narration.ErrUnavailable)
	assert.Equal(t, 3, *c.Narration().ActiveIndex)
}

func TestController_SearchAndRecent(t *testing.T) {
	t.Parallel()

	f := newFakeFeed()
	c := NewController(discardLogger(), f, newFakeVoice(), &NarratorMock{})

	a := c.Search("cat")
	b := c.Recent()

	assert.NotEqual(t, a, b)
	assert.Equal(t, []string{"cat"}, f.searched())
	assert.Equal(t, 1, f.recents)
	assert.NotNil(t, c.Results())
}

func TestController_Close(t *testing.T) {
	t.Parallel()

	f := newFakeFeed()
	v := newFakeVoice()
	closeErr := errors.New("shutdown failed")
	c := NewController(discardLogger(), f, v, &NarratorMock{
		CloseFunc: func() error { return closeErr },
	})

	assert.ErrorIs(t, c.Close(), closeErr)
	assert.True(t, f.closed)
	assert.True(t, v.closed)
	require.NoError(t, c.StopVoiceInput(context.Background()))
	assert.Equal(t, 1, v.stops)
}
