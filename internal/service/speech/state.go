package speech

// Phase is the coarse state of a Session.
type Phase int

const (
	// PhaseIdle means no capture is running and a start is accepted.
	PhaseIdle Phase = iota
	// PhaseAwaitingPermission means microphone access is being requested.
	PhaseAwaitingPermission
	// PhaseListening means audio is being captured.
	PhaseListening
	// PhaseProcessing means capture stopped and the transcript is pending.
	PhaseProcessing
	// PhaseError means the session failed and returns to idle after the reset delay.
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingPermission:
		return "awaiting_permission"
	case PhaseListening:
		return "listening"
	case PhaseProcessing:
		return "processing"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Status messages shown while a session runs.
const (
	MsgLoading    = "Loading..."
	MsgListening  = "Listening..."
	MsgProcessing = "Processing Speech..."
	MsgNoMatch    = "No Results Found, Please Try Again"
	MsgGeneric    = "Oops, something went wrong"
)

// State is what subscribers observe. PermissionRequired asks the caller to
// resolve microphone access before the next start; Err is set in PhaseError
// and when permission was refused.
type State struct {
	Phase              Phase
	Message            string
	PermissionRequired bool
	Err                error
}

// Active reports whether a voice action is in progress.
func (s State) Active() bool {
	return s.Phase != PhaseIdle
}

// Message returns the status message for a recognizer error code.
func Message(code ErrorCode) string {
	switch code {
	case ErrorNetwork, ErrorNetworkTimeout:
		return "Network error, please try again"
	case ErrorAudio:
		return "Audio recording error"
	case ErrorBusy:
		return "Recognizer busy"
	case ErrorInsufficientPermissions:
		return "Microphone permission required"
	case ErrorSpeechTimeout:
		return "No speech input"
	case ErrorNoMatch:
		return MsgNoMatch
	default:
		return MsgGeneric
	}
}
