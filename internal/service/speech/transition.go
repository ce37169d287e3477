package speech

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/myenglish-lookup/internal/domain"
)

// event is an input to the state machine.
type event interface{ isEvent() }

type (
	evStart struct{ granted bool }
	evPermission struct {
		granted bool
		err     error
	}
	evRecognizer   struct{ ev Event }
	evAcquireError struct{ err error }
	evReset        struct{}
	evStop         struct{}
)

func (evStart) isEvent() {}
func (evPermission) isEvent() {}
func (evRecognizer) isEvent() {}
func (evAcquireError) isEvent() {}
func (evReset) isEvent() {}
func (evStop) isEvent() {}

// effect is work the session loop performs after a transition.
type effect struct {
	kind effectKind
	text string
}

type effectKind int

const (
	effAcquire effectKind = iota
	effRelease
	effRequestPermission
	effDeliver
	effScheduleReset
	effCancelReset
)

var idle = State{Phase: PhaseIdle}

// transition is the whole state machine. It is pure: side effects are
// returned for the caller to run in order.
func transition(s State, ev event) (State, []effect) {
	switch e := ev.(type) {
	case evStart:
		if s.Phase != PhaseIdle {
			return s, nil
		}
		if !e.granted {
			return State{Phase: PhaseAwaitingPermission}, []effect{{kind: effRequestPermission}}
		}
		return State{Phase: PhaseListening, Message: MsgLoading}, []effect{{kind: effAcquire}}

	case evPermission:
		if s.Phase != PhaseAwaitingPermission {
			return s, nil
		}
		if !e.granted {
			err := domain.ErrPermissionDenied
			if e.err != nil {
				err = fmt.Errorf("%w: %w", domain.ErrPermissionDenied, e.err)
			}
			return State{Phase: PhaseIdle, PermissionRequired: true, Err: err}, nil
		}
		return State{Phase: PhaseListening, Message: MsgLoading}, []effect{{kind: effAcquire}}

	case evAcquireError:
		if s.Phase != PhaseListening {
			return s, nil
		}
		return failed(MsgGeneric, fmt.Errorf("%w: open: %w", domain.ErrRecognizer, e.err), false)

	case evRecognizer:
		return recognizerTransition(s, e.ev)

	case evReset:
		if s.Phase != PhaseError {
			return s, nil
		}
		return idle, nil

	case evStop:
		if s.Phase == PhaseIdle {
			return s, nil
		}
		return idle, []effect{{kind: effRelease}, {kind: effCancelReset}}
	}

	return s, nil
}

func recognizerTransition(s State, ev Event) (State, []effect) {
	if s.Phase != PhaseListening && s.Phase != PhaseProcessing {
		return s, nil
	}

	switch ev.Kind {
	case EventReadyForSpeech:
		if s.Phase == PhaseListening {
			return State{Phase: PhaseListening, Message: MsgLoading}, nil
		}
	case EventBeginningOfSpeech:
		if s.Phase == PhaseListening {
			return State{Phase: PhaseListening, Message: MsgListening}, nil
		}
	case EventEndOfSpeech:
		if s.Phase == PhaseListening {
			return State{Phase: PhaseProcessing, Message: MsgProcessing}, nil
		}
	case EventResults:
		text := bestHypothesis(ev.Texts)
		if text == "" {
			return failed(MsgNoMatch, fmt.Errorf("%w: %s", domain.ErrRecognizer, ErrorNoMatch), false)
		}
		return idle, []effect{{kind: effRelease}, {kind: effDeliver, text: text}}
	case EventError:
		return failed(Message(ev.Code), fmt.Errorf("%w: %s", domain.ErrRecognizer, ev.Code),
			ev.Code == ErrorInsufficientPermissions)
	}

	return s, nil
}

func failed(msg string, err error, permissionRequired bool) (State, []effect) {
	return State{Phase: PhaseError, Message: msg, Err: err, PermissionRequired: permissionRequired},
		[]effect{{kind: effRelease}, {kind: effScheduleReset}}
}

func bestHypothesis(texts []string) string {
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return ""
}
