package lookup

import (
	"github.com/heartmarshall/myenglish-lookup/internal/domain"
	"github.com/heartmarshall/myenglish-lookup/internal/service/search"
)

// unknownError is shown when a failure carries no reason.
const unknownError = "Unknown Error"

// ViewState is what a list screen renders.
type ViewState struct {
	Query   string
	Items   []domain.WordRecord
	Loading bool
}

// Notice is a one-shot message for the user, such as a snackbar.
// ReloadRecent asks the consumer to fall back to the recent-words list.
type Notice struct {
	Message      string
	ReloadRecent bool
}

// Reduce folds a snapshot into the view. Items always follow the latest
// snapshot; a failure keeps its partial items and yields a Notice.
func Reduce(v ViewState, s search.Snapshot) (ViewState, *Notice) {
	next := ViewState{
		Query: s.Query,
		Items: s.Words,
	}

	switch s.Status {
	case search.StatusPending:
		next.Loading = true
		return next, nil
	case search.StatusReady:
		return next, nil
	case search.StatusFailed:
		msg := s.Reason
		if msg == "" {
			msg = unknownError
		}
		return next, &Notice{Message: msg, ReloadRecent: s.Query != ""}
	}

	return v, nil
}
