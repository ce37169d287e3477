package speech

import "context"

// LanguageModelFreeForm asks the recognizer for free-form dictation.
const LanguageModelFreeForm = "free_form"

// Options configure a recognizer when it is opened.
type Options struct {
	// Language is a BCP-47 tag such as "en-US".
	Language string
	// LanguageModel is a recognizer hint, usually LanguageModelFreeForm.
	LanguageModel string
}

// Engine opens the platform speech recognizer. At most one recognizer is
// held by a Session at a time.
type Engine interface {
	// Open acquires a recognizer and starts listening.
	Open(ctx context.Context, opts Options) (Recognizer, error)
}

// Recognizer is an acquired, listening recognizer.
type Recognizer interface {
	// Events emits recognizer callbacks in order. It is closed by Close.
	Events() <-chan Event
	// Close releases the recognizer. Calling it more than once is safe.
	Close() error
}

// PermissionGate reports and requests the microphone capability.
type PermissionGate interface {
	Granted() bool
	// Request prompts for the capability and blocks until the user answers or
	// ctx is done. An error means the capability is unavailable.
	Request(ctx context.Context) (bool, error)
}

// EventKind identifies a recognizer callback.
type EventKind int

const (
	EventReadyForSpeech EventKind = iota
	EventBeginningOfSpeech
	EventEndOfSpeech
	EventResults
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventReadyForSpeech:
		return "ready_for_speech"
	case EventBeginningOfSpeech:
		return "beginning_of_speech"
	case EventEndOfSpeech:
		return "end_of_speech"
	case EventResults:
		return "results"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one recognizer callback. Texts holds the hypotheses of an
// EventResults, best first; Code is set for EventError.
type Event struct {
	Kind  EventKind
	Texts []string
	Code  ErrorCode
}

// ErrorCode is a recognizer failure reason.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota
	ErrorNetwork
	ErrorNetworkTimeout
	ErrorAudio
	ErrorServer
	ErrorClient
	ErrorSpeechTimeout
	ErrorNoMatch
	ErrorBusy
	ErrorInsufficientPermissions
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorNetwork:
		return "network"
	case ErrorNetworkTimeout:
		return "network_timeout"
	case ErrorAudio:
		return "audio"
	case ErrorServer:
		return "server"
	case ErrorClient:
		return "client"
	case ErrorSpeechTimeout:
		return "speech_timeout"
	case ErrorNoMatch:
		return "no_match"
	case ErrorBusy:
		return "busy"
	case ErrorInsufficientPermissions:
		return "insufficient_permissions"
	default:
		return "unknown"
	}
}
